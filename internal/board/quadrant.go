package board

// Quadrant is one cell of the Eisenhower matrix.
type Quadrant string

const (
	QuadrantDo        Quadrant = "do"
	QuadrantSchedule  Quadrant = "schedule"
	QuadrantDelegate  Quadrant = "delegate"
	QuadrantEliminate Quadrant = "eliminate"
)

// Quadrants lists the cells in display order.
var Quadrants = []Quadrant{QuadrantDo, QuadrantSchedule, QuadrantDelegate, QuadrantEliminate}

var quadrantLabels = map[Quadrant]string{
	QuadrantDo:        "Urgent & Important",
	QuadrantSchedule:  "Important, Not Urgent",
	QuadrantDelegate:  "Urgent, Not Important",
	QuadrantEliminate: "Neither Urgent nor Important",
}

// Classify maps the two flags to a quadrant.
func Classify(urgent, important bool) Quadrant {
	switch {
	case urgent && important:
		return QuadrantDo
	case important:
		return QuadrantSchedule
	case urgent:
		return QuadrantDelegate
	default:
		return QuadrantEliminate
	}
}

// Label is the human-readable heading for q.
func (q Quadrant) Label() string {
	return quadrantLabels[q]
}

// Cell is one quadrant with its tasks.
type Cell struct {
	Quadrant Quadrant `json:"quadrant" yaml:"quadrant"`
	Label    string   `json:"label" yaml:"label"`
	Tasks    []Task   `json:"tasks" yaml:"tasks"`
}

// Matrix holds the four cells in display order.
type Matrix struct {
	Cells []Cell `json:"cells" yaml:"cells"`
}

// BuildMatrix groups tasks into cells, preserving their order.
func BuildMatrix(tasks []Task) Matrix {
	byQuadrant := make(map[Quadrant][]Task, len(Quadrants))
	for _, t := range tasks {
		q := t.Quadrant()
		byQuadrant[q] = append(byQuadrant[q], t)
	}

	m := Matrix{Cells: make([]Cell, 0, len(Quadrants))}
	for _, q := range Quadrants {
		cellTasks := byQuadrant[q]
		if cellTasks == nil {
			cellTasks = []Task{}
		}
		m.Cells = append(m.Cells, Cell{Quadrant: q, Label: q.Label(), Tasks: cellTasks})
	}
	return m
}
