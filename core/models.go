package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Modality identifies the original medium a piece of content was extracted from.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
)

// Modalities lists all valid content modalities.
var Modalities = []Modality{ModalityText, ModalityImage, ModalityAudio, ModalityVideo}

// Chunk is a bounded slice of extracted content plus its embedding and
// modality metadata. Chunks are created at ingestion time and are read-only
// at query time.
type Chunk struct {
	Id         ID
	FileId     string
	FileName   string
	ChunkIndex int
	Modality   Modality
	Text       string
	Vector     []float32 // Embedding vector for semantic search (populated at ingestion)
	InsertedAt time.Time
}

// ChunkKey returns the deterministic content key for a chunk position.
// The same (fileId, index) pair always maps to the same chunk ID.
func ChunkKey(fileId string, index int) string {
	return fileId + "#" + strconv.Itoa(index)
}

// EntityType categorizes a named entity extracted from content.
type EntityType string

const (
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypeLocation     EntityType = "LOCATION"
	EntityTypeProduct      EntityType = "PRODUCT"
	EntityTypeConcept      EntityType = "CONCEPT"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeLocation,
	EntityTypeProduct,
	EntityTypeConcept,
}

// Entity represents a named thing extracted from ingested content.
// Identity is resolved across files and modalities by the normalized
// name+type key, so "John Smith" in a text document and in a video
// transcript map to the same node.
type Entity struct {
	Id             ID
	Name           string
	Type           EntityType
	Description    string
	Confidence     float32 // Extraction confidence in [0,1]
	SourceFileId   string
	SourceModality Modality
	InsertedAt     time.Time
}

// NormalizeEntityName canonicalizes an entity name for identity resolution:
// case-fold and collapse interior whitespace. Matching is exact on the
// normalized form; no fuzzy resolution is performed.
func NormalizeEntityName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// EntityKey returns the deterministic cross-modal identity key for an entity.
func EntityKey(name string, entityType EntityType) string {
	return "(" + string(entityType) + "," + NormalizeEntityName(name) + ")"
}

// Key returns the identity key of the entity.
func (e *Entity) Key() string {
	return EntityKey(e.Name, e.Type)
}

// RelationType categorizes an edge between two entities.
type RelationType string

const (
	RelationWorksFor    RelationType = "WORKS_FOR"
	RelationLocatedIn   RelationType = "LOCATED_IN"
	RelationMentionedIn RelationType = "MENTIONED_IN"
	RelationRelatedTo   RelationType = "RELATED_TO"
)

// RelationTypes lists all valid relationship types.
var RelationTypes = []RelationType{
	RelationWorksFor,
	RelationLocatedIn,
	RelationMentionedIn,
	RelationRelatedTo,
}

// Relationship is a directed edge between two entities.
type Relationship struct {
	Id         ID
	SourceId   ID
	TargetId   ID
	Type       RelationType
	Confidence float32
	InsertedAt time.Time
}

// RelationshipKey returns the deterministic content key for an edge.
func RelationshipKey(sourceId, targetId ID, relType RelationType) string {
	return strconv.FormatUint(uint64(sourceId), 10) + ">" + string(relType) + ">" +
		strconv.FormatUint(uint64(targetId), 10)
}

// Checkpoint records the resume position of a long-running batch processor,
// keyed by processor type. LastProcessedId is the ID of the last record the
// processor finished with.
type Checkpoint struct {
	ProcessorType   string
	LastProcessedId ID
	UpdatedAt       time.Time
}

// QueryType classifies the intent of a user query.
type QueryType string

const (
	QueryTypeFactualLookup   QueryType = "FACTUAL_LOOKUP"
	QueryTypeSummarization   QueryType = "SUMMARIZATION"
	QueryTypeSemanticLinkage QueryType = "SEMANTIC_LINKAGE"
	QueryTypeReasoning       QueryType = "REASONING"
	QueryTypeExploratory     QueryType = "EXPLORATORY"
)

// QueryTypes lists all valid query types.
var QueryTypes = []QueryType{
	QueryTypeFactualLookup,
	QueryTypeSummarization,
	QueryTypeSemanticLinkage,
	QueryTypeReasoning,
	QueryTypeExploratory,
}

// QueryAnalysis is the transient result of query triage: classification,
// extracted entities/keywords/modality hints, and the retrieval strategies
// to run. Created per request and discarded after the response.
type QueryAnalysis struct {
	OriginalQuery  string
	RewrittenQuery string
	QueryType      QueryType
	Entities       []string
	Keywords       []string
	Modalities     []Modality
	UseGraph       bool
	UseKeyword     bool
	UseVector      bool
}

// EffectiveQuery returns the rewritten query when present, otherwise the original.
func (a *QueryAnalysis) EffectiveQuery() string {
	if a.RewrittenQuery != "" {
		return a.RewrittenQuery
	}
	return a.OriginalQuery
}

// StrategySource identifies which retrieval strategy produced a result.
type StrategySource string

const (
	SourceGraph   StrategySource = "GRAPH"
	SourceKeyword StrategySource = "KEYWORD"
	SourceVector  StrategySource = "VECTOR"
)

// StrategyPriority returns the tie-breaking rank of a strategy: lower is
// more trusted. Vector outranks graph, graph outranks keyword.
func StrategyPriority(s StrategySource) int {
	switch s {
	case SourceVector:
		return 0
	case SourceGraph:
		return 1
	case SourceKeyword:
		return 2
	}
	return 3
}

// SearchResult is a single unified retrieval hit from one strategy.
type SearchResult struct {
	Source        StrategySource
	Text          string
	ChunkId       ID // Set when the result originates from a chunk
	EntityId      ID // Set when the result originates from a graph entity
	RawScore      float32
	WeightedScore float32
	Modality      Modality
	FileId        string
	FileName      string
	ChunkIndex    int
}

// Answer is the final response returned to the caller. Sources holds the
// subset of retrieved results the generated text actually cited, in
// citation order.
type Answer struct {
	Text       string
	Sources    []SearchResult
	Confidence float32
	QueryType  QueryType
	Warning    string // Empty when no degradation occurred
}
