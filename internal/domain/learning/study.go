package learning

// Subtopic is one unit of a study topic, in the order the gateway returned it.
type Subtopic struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type VideoRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

type SubtopicContent struct {
	Documentation string     `json:"documentation,omitempty"`
	Websites      []string   `json:"websites"`
	Videos        []VideoRef `json:"videos"`
}
