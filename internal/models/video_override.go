package models

import "time"

// VideoOverride replaces a course's default video link with an admin
// supplied URL.
type VideoOverride struct {
	CourseID  string    `db:"course_id" json:"course_id"`
	VideoURL  string    `db:"video_url" json:"video_url"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
