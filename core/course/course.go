package course

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openlearn/lms-api/media"
)

type Course struct {
	ID               string      `json:"id" db:"course_id"`
	Title            string      `json:"title" db:"title"`
	Description      string      `json:"description" db:"description"`
	Category         string      `json:"category" db:"category"`
	CreatedBy        string      `json:"createdBy" db:"created_by"`
	Thumbnail        media.Asset `json:"thumbnail" db:"thumbnail"`
	Lectures         Lectures    `json:"lectures" db:"lectures"`
	NumberOfLectures int         `json:"numberOfLectures" db:"number_of_lectures"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// Lecture is embedded in its course, not a standalone record. Video holds
// the single active source: PublicID is set only for hosted uploads, while
// an external link leaves it empty.
type Lecture struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    string      `json:"duration,omitempty"`
	Video       media.Asset `json:"lecture"`
}

// Lectures serializes the embedded lecture sequence as a JSONB column so
// a course save is a single-row write. Order is display order.
type Lectures []Lecture

func (l Lectures) Value() (driver.Value, error) {
	if l == nil {
		l = Lectures{}
	}
	return json.Marshal(l)
}

func (l *Lectures) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = Lectures{}
		return nil
	default:
		return fmt.Errorf("unsupported lectures column type %T", src)
	}
}

type CourseNew struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	CreatedBy   string `validate:"required"`
}

type CourseUp struct {
	Title       *string
	Description *string
	Category    *string
	CreatedBy   *string
}

type LectureNew struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Duration    string
	VideoURL    string `validate:"omitempty,url"`
}
