package dto

type ConfigResponse struct {
	Data map[string]interface{} `json:"data"`
}

type ConfigUpdateRequest struct {
	Data map[string]interface{} `json:"data"`
}
