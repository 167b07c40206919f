package course

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/openlearn/lms-api/api/background"
	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/api/weberr"
	"github.com/openlearn/lms-api/config"
	"github.com/openlearn/lms-api/core/claims"
	"github.com/openlearn/lms-api/core/user"
	"github.com/openlearn/lms-api/media"
	"github.com/openlearn/lms-api/validate"
	"github.com/sirupsen/logrus"
)

type courseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Course  Course `json:"course"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func parseForm(r *http.Request, maxBytes int64) error {
	if err := r.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		cs, err := FetchAll(ctx, db)
		if err != nil {
			return err
		}

		resp := struct {
			Success bool     `json:"success"`
			Message string   `json:"message"`
			Courses []Course `json:"courses"`
		}{true, "All courses", cs}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

// HandleShow returns the full course including lectures. Lectures are paid
// content: only admins and users with an active subscription for this
// course get through.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if !claims.IsAdmin(ctx) {
			u, err := user.Fetch(ctx, db, clm.UserID)
			if err != nil {
				return err
			}

			if u.Subscription.Status != "active" || u.Subscription.CourseID != id {
				return weberr.Forbidden(errors.New("no active subscription for this course"))
			}
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, courseResponse{true, "Course details", c}, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB, m *media.Client, up config.Upload) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := parseForm(r, up.MaxBytes); err != nil {
			return weberr.BadRequest(err)
		}

		cn := CourseNew{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Category:    r.FormValue("category"),
			CreatedBy:   r.FormValue("createdBy"),
		}

		if err := validate.Check(cn); err != nil {
			return weberr.Validation(err)
		}

		now := time.Now().UTC()
		c := Course{
			ID:          validate.GenerateID(),
			Title:       cn.Title,
			Description: cn.Description,
			Category:    cn.Category,
			CreatedBy:   cn.CreatedBy,
			Lectures:    Lectures{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		f, hdr, ok, err := web.FormFile(r, "thumbnail")
		if err != nil {
			return weberr.BadRequest(err)
		}
		if ok {
			defer f.Close()

			path, err := media.SaveUpload(f, hdr.Filename, up.Dir, up.MaxBytes)
			if err != nil {
				return weberr.BadRequest(err)
			}
			defer media.Cleanup(path)

			asset, err := m.Upload(ctx, path, media.ResourceImage)
			if err != nil {
				return weberr.Upstream(err)
			}
			c.Thumbnail = asset
		}

		if err := Create(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, courseResponse{true, "Course successfully created", c}, http.StatusOK)
	}
}

func HandleUpdate(db *sqlx.DB, m *media.Client, up config.Upload) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		if err := parseForm(r, up.MaxBytes); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		cu := CourseUp{}
		if _, ok := r.Form["title"]; ok {
			v := r.FormValue("title")
			cu.Title = &v
		}
		if _, ok := r.Form["description"]; ok {
			v := r.FormValue("description")
			cu.Description = &v
		}
		if _, ok := r.Form["category"]; ok {
			v := r.FormValue("category")
			cu.Category = &v
		}
		if _, ok := r.Form["createdBy"]; ok {
			v := r.FormValue("createdBy")
			cu.CreatedBy = &v
		}

		if cu.Title != nil {
			c.Title = *cu.Title
		}
		if cu.Description != nil {
			c.Description = *cu.Description
		}
		if cu.Category != nil {
			c.Category = *cu.Category
		}
		if cu.CreatedBy != nil {
			c.CreatedBy = *cu.CreatedBy
		}

		cn := CourseNew{Title: c.Title, Description: c.Description, Category: c.Category, CreatedBy: c.CreatedBy}
		if err := validate.Check(cn); err != nil {
			return weberr.Validation(err)
		}

		f, hdr, ok, err := web.FormFile(r, "thumbnail")
		if err != nil {
			return weberr.BadRequest(err)
		}
		if ok {
			defer f.Close()

			// The old asset goes first. A crash between the destroy and
			// the upload leaves the course without a thumbnail.
			if c.Thumbnail.Hosted() {
				if err := m.Destroy(ctx, c.Thumbnail.PublicID, media.ResourceImage); err != nil {
					return weberr.Upstream(err)
				}
			}

			path, err := media.SaveUpload(f, hdr.Filename, up.Dir, up.MaxBytes)
			if err != nil {
				return weberr.BadRequest(err)
			}
			defer media.Cleanup(path)

			asset, err := m.Upload(ctx, path, media.ResourceImage)
			if err != nil {
				return weberr.Upstream(err)
			}
			c.Thumbnail = asset
		}

		if err := Save(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, courseResponse{true, "Course updated successfully", c}, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB, m *media.Client, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if err := Delete(ctx, db, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		destroyAssets(bg, m, c)

		return web.Respond(ctx, w, messageResponse{true, "Course deleted successfully"}, http.StatusOK)
	}
}

// destroyAssets schedules best-effort media-host cleanup for everything a
// deleted course was holding. The record is already gone: failures are
// logged by the runner, never surfaced.
func destroyAssets(bg *background.Background, m *media.Client, c Course) {
	if c.Thumbnail.Hosted() {
		id := c.Thumbnail.PublicID
		bg.Go("destroy-thumbnail", func(ctx context.Context) error {
			return m.Destroy(ctx, id, media.ResourceImage)
		})
	}

	for _, l := range c.Lectures {
		if l.Video.Hosted() {
			id := l.Video.PublicID
			bg.Go("destroy-lecture-video", func(ctx context.Context) error {
				return m.Destroy(ctx, id, media.ResourceVideo)
			})
		}
	}
}

func HandleAddLecture(db *sqlx.DB, m *media.Client, up config.Upload, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.BadRequest(err)
		}

		if err := parseForm(r, up.MaxBytes); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		l, err := buildLecture(ctx, r, m, up, log, validate.GenerateID())
		if err != nil {
			return err
		}

		c.Lectures = append(c.Lectures, l)
		c.NumberOfLectures = len(c.Lectures)

		if err := Save(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, messageResponse{true, "Lecture added successfully"}, http.StatusOK)
	}
}

func HandleUpdateLecture(db *sqlx.DB, m *media.Client, up config.Upload, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := r.URL.Query().Get("courseId")
		lectureID := r.URL.Query().Get("lectureId")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		if err := parseForm(r, up.MaxBytes); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		idx := findLecture(c.Lectures, lectureID)
		if idx < 0 {
			return weberr.NewError(errors.New("lecture not found in the course"),
				"lecture not found in the course", http.StatusNotFound)
		}

		prior := c.Lectures[idx].Video

		l, err := buildLecture(ctx, r, m, up, log, lectureID)
		if err != nil {
			return err
		}

		if prior.Hosted() {
			if err := m.Destroy(ctx, prior.PublicID, media.ResourceVideo); err != nil {
				return weberr.Upstream(err)
			}
		}

		// Replace in place: the lecture keeps its id and position.
		c.Lectures[idx] = l
		c.NumberOfLectures = len(c.Lectures)

		if err := Save(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, messageResponse{true, "Lecture updated successfully"}, http.StatusOK)
	}
}

func HandleDeleteLecture(db *sqlx.DB, m *media.Client, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := r.URL.Query().Get("courseId")
		lectureID := r.URL.Query().Get("lectureId")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		c, err := Fetch(ctx, db, courseID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		idx := findLecture(c.Lectures, lectureID)
		if idx < 0 {
			return weberr.NewError(errors.New("lecture not found in the course"),
				"lecture not found in the course", http.StatusNotFound)
		}

		removed := c.Lectures[idx]
		c.Lectures = append(c.Lectures[:idx], c.Lectures[idx+1:]...)
		c.NumberOfLectures = len(c.Lectures)

		if err := Save(ctx, db, c); err != nil {
			return err
		}

		if removed.Video.Hosted() {
			id := removed.Video.PublicID
			bg.Go("destroy-lecture-video", func(ctx context.Context) error {
				return m.Destroy(ctx, id, media.ResourceVideo)
			})
		}

		return web.Respond(ctx, w, messageResponse{true, "Lecture deleted successfully"}, http.StatusOK)
	}
}

// HandleProbeDuration reports the duration of a remote video, for the
// dashboard to prefill the lecture form.
func HandleProbeDuration() web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in struct {
			URL string `json:"url" validate:"required,url"`
		}
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.Validation(err)
		}

		d, err := media.ProbeDuration(ctx, in.URL)
		if err != nil {
			return weberr.Upstream(err)
		}

		resp := struct {
			Success  bool   `json:"success"`
			Message  string `json:"message"`
			Duration string `json:"duration"`
		}{true, "Video duration", d}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
}

func findLecture(ls Lectures, id string) int {
	for i, l := range ls {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// buildLecture validates the lecture form and resolves its single video
// source: a hosted upload XOR an external URL. Duration comes from the
// form when supplied, otherwise from a best-effort probe whose failure
// only costs the duration field.
func buildLecture(ctx context.Context, r *http.Request, m *media.Client, up config.Upload, log logrus.FieldLogger, id string) (Lecture, error) {
	ln := LectureNew{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    r.FormValue("duration"),
		VideoURL:    r.FormValue("videoUrl"),
	}

	if err := validate.Check(ln); err != nil {
		return Lecture{}, weberr.Validation(err)
	}

	f, hdr, hasFile, err := web.FormFile(r, "lecture")
	if err != nil {
		return Lecture{}, weberr.BadRequest(err)
	}
	if hasFile {
		defer f.Close()
	}

	if hasFile && ln.VideoURL != "" {
		err := errors.New("provide either a video file or a video URL, not both")
		return Lecture{}, weberr.Validation(err)
	}
	if !hasFile && ln.VideoURL == "" {
		err := errors.New("either a video file or a video URL must be provided")
		return Lecture{}, weberr.Validation(err)
	}

	l := Lecture{
		ID:          id,
		Title:       ln.Title,
		Description: ln.Description,
		Duration:    ln.Duration,
	}

	if ln.VideoURL != "" {
		l.Video = media.Asset{SecureURL: ln.VideoURL}

		if l.Duration == "" {
			d, err := media.ProbeDuration(ctx, ln.VideoURL)
			if err != nil {
				log.Warnf("could not probe video duration: %v", err)
			} else {
				l.Duration = d
			}
		}

		return l, nil
	}

	path, err := media.SaveUpload(f, hdr.Filename, up.Dir, up.MaxBytes)
	if err != nil {
		return Lecture{}, weberr.BadRequest(err)
	}
	defer media.Cleanup(path)

	asset, err := m.Upload(ctx, path, media.ResourceVideo)
	if err != nil {
		return Lecture{}, weberr.Upstream(err)
	}
	l.Video = asset

	if l.Duration == "" {
		d, err := media.ProbeDuration(ctx, path)
		if err != nil {
			log.Warnf("could not probe video duration: %v", err)
		} else {
			l.Duration = d
		}
	}

	return l, nil
}
