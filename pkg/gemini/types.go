package gemini

// Request is what the scraper hands to the model for one extraction.
type Request struct {
	Instruction string
	PageText    string
	Image       []byte // PNG
}

// Response is the subset of a generateContent reply the scraper reads.
type Response struct {
	Text       string      `json:"text,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	Content *Content `json:"content,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries binary media; Data is base64 encoded by encoding/json.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

type generateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature        float64 `json:"temperature"`
	ResponseMimeType   string  `json:"responseMimeType"`
	ResponseJSONSchema any     `json:"responseJsonSchema,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
