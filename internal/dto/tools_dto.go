package dto

type MarkdownRequest struct {
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
}

type MarkdownResponse struct {
	HTML string `json:"html"`
	File string `json:"file"`
}

type DocGenRequest struct {
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
}

type DocGenResponse struct {
	File string `json:"file"`
}

type RAGIngestRequest struct {
	Path string `json:"path,omitempty"`
}

type RAGIngestResponse struct {
	Chunks int `json:"chunks"`
}

type RAGRetrieveResponse struct {
	Chunks []string `json:"chunks"`
}
