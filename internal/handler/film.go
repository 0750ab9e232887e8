package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cineforum/club-api/internal/config"
	"github.com/cineforum/club-api/internal/model"
	"github.com/cineforum/club-api/internal/repository"
)

// FilmHandler implements the screening catalog endpoints. Listing embeds
// the attendance count per film, derived from the ledger on every read.
type FilmHandler struct {
	Cfg    config.Config
	Films  FilmStore
	Ledger AttendanceStore
}

func NewFilmHandler(cfg config.Config, films FilmStore, ledger AttendanceStore) *FilmHandler {
	return &FilmHandler{Cfg: cfg, Films: films, Ledger: ledger}
}

// filmForm reads the multipart fields shared by create and update.
func filmForm(c echo.Context) (model.Film, error) {
	title := strings.TrimSpace(c.FormValue("title"))
	director := strings.TrimSpace(c.FormValue("director"))
	cast := strings.TrimSpace(c.FormValue("cast"))
	plot := strings.TrimSpace(c.FormValue("plot"))
	rawDate := strings.TrimSpace(c.FormValue("scheduledDate"))
	if title == "" || director == "" || cast == "" || plot == "" || rawDate == "" {
		return model.Film{}, errors.New("title, director, cast, plot and scheduledDate are required")
	}
	scheduled, err := parseScheduledDate(rawDate)
	if err != nil {
		return model.Film{}, err
	}
	return model.Film{Title: title, Director: director, Cast: cast, Plot: plot, ScheduledDate: scheduled}, nil
}

// parseScheduledDate accepts RFC 3339 or the HTML datetime-local format.
func parseScheduledDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New("scheduledDate must be RFC 3339 or YYYY-MM-DDTHH:MM")
}

// savePoster stores an uploaded poster under the upload directory with a
// unique name and returns its public path.
func (h *FilmHandler) savePoster(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", err
	}
	name := fmt.Sprintf("poster-%d-%s%s",
		time.Now().UnixMilli(), hex.EncodeToString(suffix[:]), filepath.Ext(file.Filename))

	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(h.Cfg.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// Create adds a film to the catalog. The body is multipart so a poster
// image can ride along in the optional coverImage field.
func (h *FilmHandler) Create(c echo.Context) error {
	film, err := filmForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := h.savePoster(file)
		if err != nil {
			c.Logger().Errorf("save poster: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film creation failed"})
		}
		film.CoverImage = &path
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Films.Create(ctx, &film); err != nil {
		c.Logger().Errorf("create film: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film creation failed"})
	}
	return c.JSON(http.StatusOK, film)
}

// filmWithCount decorates a film with how many members attended it.
type filmWithCount struct {
	model.Film
	AttendanceCount int `json:"attendanceCount"`
}

// List returns the whole catalog with attendance counts. The count is
// the length of the film's ledger entries, so it can never disagree with
// the ledger itself.
func (h *FilmHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	films, err := h.Films.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch films"})
	}
	out := make([]filmWithCount, 0, len(films))
	for _, f := range films {
		records, err := h.Ledger.ListByFilm(ctx, f.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch films"})
		}
		out = append(out, filmWithCount{Film: f, AttendanceCount: len(records)})
	}
	return c.JSON(http.StatusOK, out)
}

// Upcoming returns films scheduled from now on, soonest first.
func (h *FilmHandler) Upcoming(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	films, err := h.Films.Upcoming(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch films"})
	}
	return c.JSON(http.StatusOK, films)
}

// Past returns already-screened films, most recent first.
func (h *FilmHandler) Past(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	films, err := h.Films.Past(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to fetch films"})
	}
	return c.JSON(http.StatusOK, films)
}

// Update rewrites a film's metadata, optionally replacing the poster.
func (h *FilmHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid film id"})
	}
	film, err := filmForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	current, err := h.Films.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film update failed"})
	}

	film.CoverImage = current.CoverImage
	if file, err := c.FormFile("coverImage"); err == nil {
		path, err := h.savePoster(file)
		if err != nil {
			c.Logger().Errorf("save poster: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film update failed"})
		}
		film.CoverImage = &path
	}

	if err := h.Films.Update(ctx, id, film); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "film updated"})
}

// Delete removes a film and, via the cascade, its attendance records.
func (h *FilmHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid film id"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Films.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "film not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "film deletion failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "film deleted"})
}
