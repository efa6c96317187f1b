package ai

// QueryTypeNames defines the valid query classifications.
// These values are embedded into the classification prompt and validated
// against the classifier's JSON output.
var QueryTypeNames = []string{
	"FACTUAL_LOOKUP",
	"SUMMARIZATION",
	"SEMANTIC_LINKAGE",
	"REASONING",
	"EXPLORATORY",
}

// ModalityNames defines the valid content modalities a query may target.
var ModalityNames = []string{
	"text",
	"image",
	"audio",
	"video",
}
