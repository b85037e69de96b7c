package dto

type CreateFlowRequest struct {
	Title string   `json:"title"`
	Tasks []string `json:"tasks,omitempty"`
	// Generate asks the AI suggester for starter tasks when Tasks is empty.
	Generate bool `json:"generate,omitempty"`
}

type RenameFlowRequest struct {
	Title string `json:"title"`
}

type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type SuggestTasksRequest struct {
	Title string `json:"title"`
}

type SuggestResourcesRequest struct {
	Description string `json:"description"`
}
