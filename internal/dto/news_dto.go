package dto

type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Image     string `json:"image,omitempty"`
}

type NewsResponse struct {
	News   []NewsItem `json:"news"`
	Source string     `json:"source"`
	Region string     `json:"region"`
}
