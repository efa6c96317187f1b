package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/askit/ai"
)

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "query_type": {
      "type": "string"
    },
    "entities": {
      "type": "array",
      "items": {"type": "string"}
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"}
    },
    "modalities": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["query_type", "entities", "keywords", "modalities"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Analyze the given user query and return its characteristics as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- query_type must match exactly one of: %s.
  FACTUAL_LOOKUP is direct fact retrieval, SUMMARIZATION condenses multiple sources,
  SEMANTIC_LINKAGE connects an entity across files or modalities, REASONING requires
  multi-hop inference, EXPLORATORY is open-ended browsing.
- entities holds names of specific people, organizations, locations, products, or
  concepts mentioned in the query, exactly as written.
- keywords holds meaningful lowercase search terms from the query; exclude stop words
  and interrogatives.
- modalities holds only values from: %s. Include a modality only when the query
  explicitly asks about that kind of content. An empty array means no restriction.
- The JSON must parse without errors; no trailing commas, no extra keys, and no
  extraneous text outside the object.

Example:
Input: "Who does John Smith work for?"
Output:
{
  "query_type": "FACTUAL_LOOKUP",
  "entities": ["John Smith"],
  "keywords": ["work"],
  "modalities": []
}

Example:
Input: "What did John Smith say across documents and videos?"
Output:
{
  "query_type": "SEMANTIC_LINKAGE",
  "entities": ["John Smith"],
  "keywords": ["documents", "videos"],
  "modalities": ["text", "video"]
}

Example:
Input: "summarize everything about the acme merger"
Output:
{
  "query_type": "SUMMARIZATION",
  "entities": ["acme"],
  "keywords": ["merger"],
  "modalities": []
}

Example:
Input: "what interesting things are in here"
Output:
{
  "query_type": "EXPLORATORY",
  "entities": [],
  "keywords": ["interesting"],
  "modalities": []
}`

// buildClassificationPrompt creates the system prompt with the valid query
// types and modalities embedded.
func buildClassificationPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate,
		classificationResponseSchema,
		strings.Join(ai.QueryTypeNames, ", "),
		strings.Join(ai.ModalityNames, ", "))
}
