package graph

import "strings"

// NodeType is the closed set of entity kinds the backend serves.
type NodeType string

const (
	NodeTypeBook      NodeType = "Book"
	NodeTypeAuthor    NodeType = "Author"
	NodeTypeEra       NodeType = "Era"
	NodeTypeMovement  NodeType = "Movement"
	NodeTypeCharacter NodeType = "Character"
	NodeTypePlot      NodeType = "Plot"
)

// AllNodeTypes lists every node type in display order.
var AllNodeTypes = []NodeType{
	NodeTypeBook,
	NodeTypeAuthor,
	NodeTypeEra,
	NodeTypeMovement,
	NodeTypeCharacter,
	NodeTypePlot,
}

// ParseNodeType converts a string to a NodeType, case-insensitively.
func ParseNodeType(s string) (NodeType, bool) {
	for _, t := range AllNodeTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, true
		}
	}
	return "", false
}

// Color returns the legend colour used for the type in panels.
func (t NodeType) Color() string {
	if c, ok := nodeTypeColors[t]; ok {
		return c
	}
	return "#95a5a6"
}

var nodeTypeColors = map[NodeType]string{
	NodeTypeBook:      "#4a90d9",
	NodeTypeAuthor:    "#e74c3c",
	NodeTypeEra:       "#f39c12",
	NodeTypeMovement:  "#9b59b6",
	NodeTypeCharacter: "#2ecc71",
	NodeTypePlot:      "#1abc9c",
}

// RelationType names a kind of link. The set is known but links may carry
// other values, so it stays a plain string type.
type RelationType string

const (
	RelationWrittenBy         RelationType = "WRITTEN_BY"
	RelationBelongsToEra      RelationType = "BELONGS_TO_ERA"
	RelationBelongsToMovement RelationType = "BELONGS_TO_MOVEMENT"
	RelationHasCharacter      RelationType = "HAS_CHARACTER"
	RelationHasPlot           RelationType = "HAS_PLOT"
	RelationSimilarTo         RelationType = "SIMILAR_TO"
	RelationInfluenced        RelationType = "INFLUENCED"
)

// AllRelationTypes lists every known relation type in display order.
var AllRelationTypes = []RelationType{
	RelationWrittenBy,
	RelationBelongsToEra,
	RelationBelongsToMovement,
	RelationHasCharacter,
	RelationHasPlot,
	RelationSimilarTo,
	RelationInfluenced,
}

var relationLabels = map[RelationType]string{
	RelationWrittenBy:         "written by",
	RelationBelongsToEra:      "era",
	RelationBelongsToMovement: "movement",
	RelationHasCharacter:      "character",
	RelationHasPlot:           "plot",
	RelationSimilarTo:         "similar",
	RelationInfluenced:        "influenced",
}

// Label returns the human-readable name, or the raw value for unknown types.
func (r RelationType) Label() string {
	if l, ok := relationLabels[r]; ok {
		return l
	}
	return string(r)
}

// Known reports whether r is one of AllRelationTypes.
func (r RelationType) Known() bool {
	_, ok := relationLabels[r]
	return ok
}

// ParseRelationType converts a string to a known RelationType.
func ParseRelationType(s string) (RelationType, bool) {
	r := RelationType(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Known()
}
