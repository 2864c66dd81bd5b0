package entity

// ProjectStats summarises club project association for an identity.
type ProjectStats struct {
	Assigned int `json:"assigned"`
	Led      int `json:"led"`
}
