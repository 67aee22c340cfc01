package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived  int   `json:"sessions_received"`
	ExercisesReceived int   `json:"exercises_received"`
	WorkoutsInserted  int64 `json:"workouts_inserted"`
	WorkoutsSkipped   int64 `json:"workouts_skipped"`

	Message string `json:"message,omitempty"`
}
