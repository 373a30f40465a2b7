package fixture

import "github.com/dd0wney/cluso-topology/pkg/graph"

func setIf(props map[string]any, key string, v any) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return
		}
	case *int:
		if x == nil {
			return
		}
		v = *x
	}
	props[key] = v
}

func bookProperties(b graph.Book) map[string]any {
	props := map[string]any{"id": b.ID, "title": b.Title}
	setIf(props, "publication_year", b.PublicationYear)
	setIf(props, "genre", b.Genre)
	setIf(props, "description", b.Description)
	return props
}

func authorProperties(a graph.Author) map[string]any {
	props := map[string]any{"id": a.ID, "name": a.Name}
	setIf(props, "birth_year", a.BirthYear)
	setIf(props, "death_year", a.DeathYear)
	setIf(props, "nationality", a.Nationality)
	return props
}

func bookFromNode(n graph.Node) graph.Book {
	title, _ := n.Properties["title"].(string)
	if title == "" {
		title = n.Label
	}
	genre, _ := n.Properties["genre"].(string)
	desc, _ := n.Properties["description"].(string)
	return graph.Book{
		ID:              n.ID,
		Title:           title,
		PublicationYear: intProp(n.Properties, "publication_year"),
		Genre:           genre,
		Description:     desc,
	}
}

func authorFromNode(n graph.Node) graph.Author {
	name, _ := n.Properties["name"].(string)
	if name == "" {
		name = n.Label
	}
	nationality, _ := n.Properties["nationality"].(string)
	return graph.Author{
		ID:          n.ID,
		Name:        name,
		BirthYear:   intProp(n.Properties, "birth_year"),
		DeathYear:   intProp(n.Properties, "death_year"),
		Nationality: nationality,
	}
}

// intProp reads an integer property decoded from YAML (int) or JSON
// (float64).
func intProp(props map[string]any, key string) *int {
	var v int
	switch x := props[key].(type) {
	case int:
		v = x
	case int64:
		v = int(x)
	case float64:
		v = int(x)
	default:
		return nil
	}
	return &v
}
