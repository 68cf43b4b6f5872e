package utils

import (
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const createdAtLayout = "2006-01-02 15:04:05"

// PostID derives the stable post id from the creation instant: base-36 of
// the local-time milliseconds.
func PostID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 36)
}

// CreatedAt renders the creation instant as local-time text, the form the
// latest-posts table stores.
func CreatedAt(t time.Time) string {
	return t.Format(createdAtLayout)
}

// RunID returns a short correlation id for one fleet run.
func RunID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return id
}
