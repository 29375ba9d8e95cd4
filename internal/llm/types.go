package llm

// generateRequest is the body of a generateContent call
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

// schema is the OpenAPI subset accepted as a response schema
type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

var probabilitySchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"number":      {Type: "INTEGER"},
		"probability": {Type: "NUMBER", Description: "Probability percentage (0-100)"},
		"deviation":   {Type: "NUMBER", Description: "Statistical deviation score"},
	},
	Required: []string{"number", "probability", "deviation"},
}

var combinationSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"primary":   {Type: "ARRAY", Items: &schema{Type: "INTEGER"}},
		"secondary": {Type: "ARRAY", Items: &schema{Type: "INTEGER"}},
		"reasoning": {Type: "STRING"},
	},
	Required: []string{"primary", "reasoning"},
}

// predictionSchema mirrors prediction.Prediction. summary describes the
// analysisSummary field, which sets the language of the answer.
func predictionSchema(summary string) *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"analysisSummary":        {Type: "STRING", Description: summary},
			"primaryProbabilities":   {Type: "ARRAY", Items: probabilitySchema},
			"secondaryProbabilities": {Type: "ARRAY", Items: probabilitySchema},
			"suggestedCombinations":  {Type: "ARRAY", Items: combinationSchema},
		},
		Required: []string{"analysisSummary", "primaryProbabilities", "suggestedCombinations"},
	}
}
