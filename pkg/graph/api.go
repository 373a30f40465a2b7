package graph

// SearchResult is one hit from the backend's node search.
type SearchResult struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       NodeType       `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Neighbor is a node adjacent to a queried node, with the connecting
// relation and its direction relative to the queried node.
type Neighbor struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	Type         NodeType       `json:"type"`
	RelationType RelationType   `json:"relation_type"`
	IsOutgoing   bool           `json:"is_outgoing"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// Filter restricts a graph fetch. Empty slices mean "no restriction".
type Filter struct {
	NodeTypes     []NodeType
	RelationTypes []RelationType
}

// Book is the backend's book record.
type Book struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title" validate:"required,max=200"`
	PublicationYear *int   `json:"publication_year,omitempty" validate:"omitempty,min=-3000,max=3000"`
	Genre           string `json:"genre,omitempty" validate:"max=100"`
	Description     string `json:"description,omitempty" validate:"max=2000"`
}

// Author is the backend's author record.
type Author struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required,max=200"`
	BirthYear   *int   `json:"birth_year,omitempty" validate:"omitempty,min=-3000,max=3000"`
	DeathYear   *int   `json:"death_year,omitempty" validate:"omitempty,min=-3000,max=3000"`
	Nationality string `json:"nationality,omitempty" validate:"max=100"`
}

// RelationshipRequest connects two existing nodes.
type RelationshipRequest struct {
	SourceID     string         `json:"source_id" validate:"required"`
	TargetID     string         `json:"target_id" validate:"required"`
	RelationType RelationType   `json:"relation_type" validate:"required,oneof=WRITTEN_BY BELONGS_TO_ERA BELONGS_TO_MOVEMENT HAS_CHARACTER HAS_PLOT SIMILAR_TO INFLUENCED"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// ImportResult reports how many records a bulk import created.
type ImportResult struct {
	Message  string         `json:"message,omitempty"`
	Imported map[string]int `json:"imported"`
}

// Relationship is the backend's record of a created link.
type Relationship struct {
	ID           string         `json:"id"`
	SourceID     string         `json:"source_id"`
	TargetID     string         `json:"target_id"`
	RelationType RelationType   `json:"relation_type"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// ImportFile is the JSON document accepted by a bulk import. Relationship
// endpoints are matched by book title or author name.
type ImportFile struct {
	Authors       []Author             `json:"authors,omitempty"`
	Books         []Book               `json:"books,omitempty"`
	Relationships []ImportRelationship `json:"relationships,omitempty"`
}

// ImportRelationship links two records of an import by title or name.
type ImportRelationship struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}
