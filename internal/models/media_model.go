package models

type MediaFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MediaFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// MediaImage is a downloaded thumbnail ready for a multimodal prompt.
// Data is base64-encoded.
type MediaImage struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}
