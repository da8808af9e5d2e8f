package student

// Student is the signed-in submitter shown on the dashboard profile.
type Student struct {
	ID        string
	Name      string
	StudentID string // Registry number, e.g. ST-2024-889
	AvatarURL string
}
