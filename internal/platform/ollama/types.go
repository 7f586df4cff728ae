package ollama

// generateRequest is the body of POST /api/generate.
type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	System    string         `json:"system,omitempty"`
	Format    map[string]any `json:"format,omitempty"`
	Stream    bool           `json:"stream"`
	KeepAlive string         `json:"keep_alive,omitempty"`
	Options   requestOptions `json:"options"`
}

// requestOptions carries sampling and runtime knobs. Optional knobs are
// omitted unless configured.
type requestOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
	NumCtx      *int    `json:"num_ctx,omitempty"`
	NumThread   *int    `json:"num_thread,omitempty"`
	NumBatch    *int    `json:"num_batch,omitempty"`
	NumGPU      *int    `json:"num_gpu,omitempty"`
}

// generateResponse is the non-streaming reply of /api/generate.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}
