package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/pkg/utils"
	"github.com/go-resty/resty/v2"
)

// TenantRepository reads the externally edited tenant registry. The registry
// is fetched fresh on every call; it is the operators' live document and a
// cached copy goes stale within minutes.
type TenantRepository interface {
	LoadActive(ctx context.Context) ([]*models.Tenant, error)
	Lookup(ctx context.Context, id string) (*models.Tenant, error)
}

type tenantRepository struct {
	client     *resty.Client
	csvURL     string
	baseDomain string
}

func NewTenantRepository(csvURL, baseDomain string) TenantRepository {
	client := resty.New().SetTimeout(30 * time.Second)
	return &tenantRepository{
		client:     client,
		csvURL:     csvURL,
		baseDomain: baseDomain,
	}
}

func (r *tenantRepository) LoadActive(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	var active []*models.Tenant
	for _, t := range tenants {
		if strings.EqualFold(t.Status, models.TenantStatusActive) {
			active = append(active, t)
		}
	}
	return active, nil
}

func (r *tenantRepository) Lookup(ctx context.Context, id string) (*models.Tenant, error) {
	tenants, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	want := utils.NormalizeDomain(id, r.baseDomain)
	for _, t := range tenants {
		if t.Domain == want {
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *tenantRepository) fetchAll(ctx context.Context) ([]*models.Tenant, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.csvURL)
	if err != nil {
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "tenant registry", Err: err}
	}
	if resp.StatusCode() != 200 {
		err = fmt.Errorf("registry fetch returned status %d", resp.StatusCode())
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "tenant registry", Err: err}
	}

	return r.parse(string(resp.Body()))
}

func (r *tenantRepository) parse(raw string) ([]*models.Tenant, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "tenant registry", Err: err}
	}
	if len(records) == 0 {
		err = errors.New("registry is empty")
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "tenant registry", Err: err}
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["domain"]; !ok {
		err = errors.New("registry is missing a domain column")
		slog.Error(err.Error())
		return nil, &apperr.DataSourceError{Source: "tenant registry", Err: err}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tenants []*models.Tenant
	for _, record := range records[1:] {
		domain := utils.NormalizeDomain(field(record, "domain"), r.baseDomain)
		if domain == "" {
			continue
		}
		tenants = append(tenants, &models.Tenant{
			Domain:         domain,
			BusinessName:   field(record, "business_name"),
			Status:         field(record, "status"),
			Brief:          field(record, "brief"),
			Industry:       field(record, "industry"),
			Language:       field(record, "language"),
			AssignedFolder: field(record, "folder"),
		})
	}
	return tenants, nil
}
