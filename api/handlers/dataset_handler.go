// api/handlers/dataset_handler.go
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
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/dataset"
)

// DataSetHandler checks, stores and exports data sets.
type DataSetHandler struct {
	DB    *sql.DB
	Cfg   *config.Config
	Clock clock
}

// NewDataSetHandler creates a new DataSetHandler.
func NewDataSetHandler(db *sql.DB, cfg *config.Config) *DataSetHandler {
	return &DataSetHandler{DB: db, Cfg: cfg}
}

func (h *DataSetHandler) bindSelection(c *gin.Context) (dataset.Selection, bool) {
	var req models.DataSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("DataSet binding error: %v", err)
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return dataset.Selection{}, false
	}
	on, err := dataset.ParseSequences(req.On)
	if err != nil {
		_ = c.Error(err)
		return dataset.Selection{}, false
	}
	off, err := dataset.ParseSequences(req.Off)
	if err != nil {
		_ = c.Error(err)
		return dataset.Selection{}, false
	}
	return dataset.Selection{
		On:      on,
		Off:     off,
		Name:    req.Name,
		Comment: req.Comment,
		UserKey: c.GetInt64(middleware.UserIDKey),
		Update:  req.Update,
	}, true
}

// Check validates a selection without storing it.
func (h *DataSetHandler) Check(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	rep, err := dataset.Gather(c.Request.Context(), h.DB, sel)
	if err != nil {
		_ = c.Error(err)
		return
	}
	res := dataset.Check(sel, rep)
	c.JSON(http.StatusOK, gin.H{"mode": sel.Mode(), "check": res, "ok": res.OK()})
}

// Store inserts or updates a data set. A selection failing the check is
// answered with 422 and the findings.
func (h *DataSetHandler) Store(c *gin.Context) {
	sel, ok := h.bindSelection(c)
	if !ok {
		return
	}
	out, err := dataset.Store(c.Request.Context(), h.DB, sel, h.Clock.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	switch {
	case !out.Check.OK():
		c.JSON(http.StatusUnprocessableEntity, out)
	case sel.Update > 0:
		c.JSON(http.StatusOK, out)
	default:
		c.JSON(http.StatusCreated, out)
	}
}

// File returns the data-set file of a stored data set as attachment.
func (h *DataSetHandler) File(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number <= 0 {
		_ = c.Error(fmt.Errorf("%w: data set number must be a positive integer", core.ErrInvalidInput))
		return
	}
	text, err := dataset.LoadFile(c.Request.Context(), h.DB, number)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=dataset%08d.txt", number))
	c.Data(http.StatusOK, "text/octet", []byte(text))
}
