package models

// Upload describes one stored media file.
type Upload struct {
	URL              string `json:"url"`
	Path             string `json:"path"`
	OriginalFilename string `json:"filename"`
	Size             int64  `json:"size"`
	MimeType         string `json:"mime_type"`
}

// UploadResult is the per-file outcome of a batch upload. A failed file
// carries Error and leaves Upload nil; siblings are unaffected.
type UploadResult struct {
	Filename string  `json:"filename"`
	Success  bool    `json:"success"`
	Upload   *Upload `json:"upload,omitempty"`
	Error    string  `json:"error,omitempty"`
}
