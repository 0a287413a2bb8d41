package model

// Task is the domain model for a todo entry.
// Text never changes after creation; only Completed is mutable.
type Task struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}
