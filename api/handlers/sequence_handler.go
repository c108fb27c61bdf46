// api/handlers/sequence_handler.go
package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/api/middleware"
	"github.com/astro-datacenter/rundb/api/models"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/auth"
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/plots"
	"github.com/astro-datacenter/rundb/internal/storage"
)

// SequenceHandler resets sequence processing and browses sequence plots.
type SequenceHandler struct {
	DB      *sql.DB
	Cfg     *config.Config
	Clock   clock
	Locator plots.Locator
}

// NewSequenceHandler creates a new SequenceHandler.
func NewSequenceHandler(db *sql.DB, cfg *config.Config) *SequenceHandler {
	return &SequenceHandler{DB: db, Cfg: cfg, Locator: plots.Locator{Root: cfg.PlotDir}}
}

// Reset clears the processing state of the given sequences. Only the
// configured reset users may do so.
func (h *SequenceHandler) Reset(c *gin.Context) {
	user := c.GetString(middleware.UserNameKey)
	if !h.Cfg.MayReset(user) {
		customLog.Warnf("Reset refused for user %s", user)
		_ = c.Error(fmt.Errorf("reset sequences: %w", auth.ErrForbidden))
		return
	}
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	seqs, err := core.ParseSequenceList(req.Sequences)
	if err != nil {
		_ = c.Error(err)
		return
	}
	rows, err := storage.ResetSequences(c.Request.Context(), h.DB, storage.ResetStep(req.Step), seqs, h.Clock.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.ResetResponse{Message: "Sequences reset", Rows: rows})
}

// PreviewReset shows, without changing anything, the state of each given
// sequence and whether a reset of the step would touch it.
func (h *SequenceHandler) PreviewReset(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	seqs, err := core.ParseSequenceList(req.Sequences)
	if err != nil {
		_ = c.Error(err)
		return
	}
	states, err := storage.PreviewReset(c.Request.Context(), h.DB, storage.ResetStep(req.Step), seqs, h.Clock.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	step := req.Step
	if step == "" {
		step = "crashed"
	}
	c.JSON(http.StatusOK, models.ResetPreviewResponse{Step: step, Sequences: states})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: '%s' must be a non-negative integer", core.ErrInvalidInput, key)
	}
	return n, nil
}

// PlotSequences returns the sequences in a range with the position of the
// current one and the plot file for it.
func (h *SequenceHandler) PlotSequences(c *gin.Context) {
	var (
		r   storage.PlotRange
		err error
	)
	if r.From, err = queryInt(c, "from"); err != nil {
		_ = c.Error(err)
		return
	}
	if r.To, err = queryInt(c, "to"); err != nil {
		_ = c.Error(err)
		return
	}
	source, err := queryInt(c, "source")
	if err != nil {
		_ = c.Error(err)
		return
	}
	r.SourceKey = int64(source)
	current, err := queryInt(c, "seq")
	if err != nil {
		_ = c.Error(err)
		return
	}
	tab, err := queryInt(c, "tab")
	if err != nil {
		_ = c.Error(err)
		return
	}
	kind, err := plots.LookupKind(c.Query("type"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	seqs, err := storage.PlotSequences(c.Request.Context(), h.DB, r)
	if err != nil {
		_ = c.Error(err)
		return
	}
	pos := plots.Navigate(seqs, current)
	resp := gin.H{"position": pos}
	if pos.Current > 0 {
		resp["plot"] = kind.RelFile(pos.Current, tab)
	}
	c.JSON(http.StatusOK, resp)
}

// Sources lists the sources a plot range can be restricted to.
func (h *SequenceHandler) Sources(c *gin.Context) {
	sources, err := storage.Sources(c.Request.Context(), h.DB)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

// PlotFile serves one tab image, or the tab list when no tab is given.
func (h *SequenceHandler) PlotFile(c *gin.Context) {
	kind, err := plots.LookupKind(c.Query("type"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	number, err := queryInt(c, "n")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if c.Query("tab") == "" {
		tabs, err := h.Locator.Tabs(kind, number)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"type": kind.Name, "number": number, "tabs": tabs})
		return
	}

	tab, err := queryInt(c, "tab")
	if err != nil {
		_ = c.Error(err)
		return
	}
	path, ok := h.Locator.File(kind, number, tab)
	if !ok {
		_ = c.Error(fmt.Errorf("%w: %s", plots.ErrNoPlot, kind.RelFile(number, tab)))
		return
	}
	c.File(path)
}
