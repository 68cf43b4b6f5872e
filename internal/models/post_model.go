package models

// GeneratedPost is the structured output extracted from the model response.
// Body holds paragraphs separated by double newlines.
type GeneratedPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostRecord is one row of the latest-posts table, name-addressed by the
// sheet header so column reordering or additions do not break persistence.
type PostRecord struct {
	Domain       string `json:"domain"`
	BusinessName string `json:"business_name"`
	Title        string `json:"title"`
	PostID       string `json:"post_id"`
	CreatedAt    string `json:"created_at"`
	Language     string `json:"language"`
	Industry     string `json:"industry"`
	Folder       string `json:"folder"`
	Body         string `json:"body"`
	ImageURLs    string `json:"image_urls"`
}

// Latest-posts sheet column names.
const (
	ColDomain       = "domain"
	ColBusinessName = "business_name"
	ColTitle        = "title"
	ColPostID       = "post_id"
	ColCreatedAt    = "created_at"
	ColLanguage     = "language"
	ColIndustry     = "industry"
	ColFolder       = "folder"
	ColBody         = "body"
	ColImageURLs    = "image_urls"
)

func (p *PostRecord) ToRow() map[string]string {
	return map[string]string{
		ColDomain:       p.Domain,
		ColBusinessName: p.BusinessName,
		ColTitle:        p.Title,
		ColPostID:       p.PostID,
		ColCreatedAt:    p.CreatedAt,
		ColLanguage:     p.Language,
		ColIndustry:     p.Industry,
		ColFolder:       p.Folder,
		ColBody:         p.Body,
		ColImageURLs:    p.ImageURLs,
	}
}
