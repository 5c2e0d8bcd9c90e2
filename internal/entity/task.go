package entity

// Task belongs to exactly one folder. DependsOn lists other task ids; a
// task must not depend on itself or close a dependency cycle.
type Task struct {
	Base
	TaskType  string   `json:"task_type"`
	FolderID  string   `json:"folder_id"`
	Assignees []string `json:"assignees,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
}

// NewTask constructs a task attached to the given folder.
func NewTask(name, taskType, folderID, createdBy string) *Task {
	t := &Task{
		Base:     newBase(name, createdBy),
		TaskType: taskType,
		FolderID: folderID,
	}
	t.Status = "Not Started"
	return t
}

// Validate checks task invariants.
func (t *Task) Validate() []Violation {
	vs := t.validateBase()
	if t.TaskType == "" {
		vs = append(vs, Violation{Field: "task_type", Msg: "is required"})
	}
	if t.FolderID == "" {
		vs = append(vs, Violation{Field: "folder_id", Msg: "is required"})
	}
	for _, dep := range t.DependsOn {
		if dep == t.ID {
			vs = append(vs, Violation{Field: "depends_on", Msg: "task cannot depend on itself"})
			break
		}
	}
	return vs
}

// HasDependencyCycle reports whether adding edges start -> deps[start]...
// closes a cycle in the dependency graph. deps maps task id to the ids it
// depends on.
func HasDependencyCycle(start string, deps map[string][]string) bool {
	const (
		white = 0 // unvisited
		gray  = 1 // on stack
		black = 2 // done
	)
	color := make(map[string]int)

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range deps[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}
	return visit(start)
}
