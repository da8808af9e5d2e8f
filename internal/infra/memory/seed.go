package memory

import (
	"database/sql"
	"time"

	"eduquery/internal/domain/query"
	"eduquery/internal/domain/student"
	"eduquery/internal/domain/teacher"
)

// CurrentStudent is the signed-in submitter of the demo dashboard.
var CurrentStudent = student.Student{
	ID:        "u-123",
	Name:      "Alex Johnson",
	StudentID: "ST-2024-889",
	AvatarURL: "https://picsum.photos/200/200?random=1",
}

// SeedTeachers is the built-in faculty directory used when no database is configured.
func SeedTeachers() []*teacher.Teacher {
	return []*teacher.Teacher{
		{ID: "t-1", Name: "Dr. Emily Carter", Department: "Computer Science", AvatarURL: "https://picsum.photos/200/200?random=2"},
		{ID: "t-2", Name: "Prof. Alan Grant", Department: "Mathematics", AvatarURL: "https://picsum.photos/200/200?random=3"},
		{ID: "t-3", Name: "Mrs. Sarah Connor", Department: "Administration", AvatarURL: "https://picsum.photos/200/200?random=4"},
	}
}

// SeedQueries returns the demo queries in dashboard order, with timestamps relative to now.
func SeedQueries(now time.Time) []query.Query {
	hourAgo := now.Add(-time.Hour)
	return []query.Query{
		{
			ID:              "q-1",
			Title:           "Grade Discrepancy in Calculus II",
			Description:     "I noticed my midterm grade is listed as 75, but my paper says 85. Can you please check?",
			Subject:         "Calculus II",
			TeacherID:       "t-2",
			Status:          query.StatusInProgress,
			Urgency:         query.UrgencyHigh,
			DateSubmitted:   now.Add(-48 * time.Hour),
			LastUpdated:     now.Add(-24 * time.Hour),
			TeacherResponse: sql.NullString{String: "I am looking into your paper records now. Will update shortly.", Valid: true},
		},
		{
			ID:              "q-2",
			Title:           "Request for Extension - CS101 Project",
			Description:     "I have been unwell for the past 3 days. Attached is my medical certificate. Can I get a 2-day extension?",
			Subject:         "Computer Science 101",
			TeacherID:       "t-1",
			Status:          query.StatusResolved,
			Urgency:         query.UrgencyMedium,
			DateSubmitted:   now.Add(-7 * 24 * time.Hour),
			LastUpdated:     now.Add(-6 * 24 * time.Hour),
			TeacherResponse: sql.NullString{String: "Extension granted. New deadline is Friday.", Valid: true},
		},
		{
			ID:            "q-3",
			Title:         "Dormitory WiFi Issues",
			Description:   "The WiFi in Block B has been down since yesterday evening.",
			Subject:       "Facilities",
			TeacherID:     "t-3",
			Status:        query.StatusPending,
			Urgency:       query.UrgencyLow,
			DateSubmitted: hourAgo,
			LastUpdated:   hourAgo,
		},
	}
}
