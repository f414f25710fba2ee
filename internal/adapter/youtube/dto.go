package youtube

// searchResponse is the subset of the search.list payload we consume.
type searchResponse struct {
	Items []searchItem `json:"items"`
	Error *apiError    `json:"error,omitempty"`
}

type searchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
