package teacher

// Teacher is a faculty member queries can be routed to.
// Reference data: the core never mutates it.
type Teacher struct {
	ID         string
	Name       string
	Department string
	AvatarURL  string
}

// UnknownName is shown when a query references a teacher that is not in the directory.
const UnknownName = "Unknown Teacher"
