// api/handlers/query_handler.go
package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/astro-datacenter/rundb/api/models"
	"github.com/astro-datacenter/rundb/config"
	"github.com/astro-datacenter/rundb/internal/catalog"
	"github.com/astro-datacenter/rundb/internal/core"
	"github.com/astro-datacenter/rundb/internal/query"
	"github.com/astro-datacenter/rundb/internal/render"
	"github.com/astro-datacenter/rundb/internal/storage"
)

// Request parameters handled outside the query builder
const (
	paramFormat    = "format"
	paramReset     = "fReset"
	paramShowQuery = "fShowQuery"
	sessionPrefix  = "rundb_"
	sessionMaxAge  = 7 * 24 * 3600
)

// QueryHandler serves the report pages of the catalog.
type QueryHandler struct {
	DB    *sql.DB
	Cfg   *config.Config
	Clock clock
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(db *sql.DB, cfg *config.Config) *QueryHandler {
	return &QueryHandler{DB: db, Cfg: cfg}
}

// ListPages describes every report page.
func (h *QueryHandler) ListPages(c *gin.Context) {
	infos := make([]models.PageInfo, 0)
	for _, name := range catalog.Names() {
		page, err := catalog.Lookup(name)
		if err != nil {
			_ = c.Error(err)
			return
		}
		info := models.PageInfo{Name: page.Name, Title: page.Title, Columns: []string{}, Enums: []string{}, Statuses: []string{}}
		for _, col := range page.Columns {
			info.Columns = append(info.Columns, col.Key)
		}
		for _, e := range page.Enums {
			info.Enums = append(info.Enums, e.Param)
		}
		for _, s := range page.Steps {
			info.Statuses = append(info.Statuses, s.StatusParam())
		}
		infos = append(infos, info)
	}
	c.JSON(http.StatusOK, gin.H{"pages": infos})
}

// Query builds and runs the statement of one page. Parameters of earlier
// calls are remembered per page in a cookie until fReset is sent.
// With fSendTxt every matching row is returned as a text attachment.
func (h *QueryHandler) Query(c *gin.Context) {
	name, err := pathName(c, "page")
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, err := catalog.Lookup(name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	format := c.DefaultQuery(paramFormat, render.FormatHTML)
	if !slices.Contains(render.Formats, format) {
		_ = c.Error(fmt.Errorf("%w: '%s'", render.ErrUnknownFormat, format))
		return
	}

	params := h.sessionParams(c, page.Name)
	req, err := query.NewRequest(page, params, query.Options{
		Now:             h.Clock.now(),
		TimeLimit:       h.Cfg.StatusTimeLimit,
		DefaultPageSize: h.Cfg.DefaultPageSize,
		MaxPageSize:     h.Cfg.MaxPageSize,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	stmt, err := query.Build(req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	customLog.Debugf("Query %s: %s", page.Name, stmt.Debug())

	res, err := storage.RunQuery(c.Request.Context(), h.DB, stmt)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	if stmt.Export {
		if err := render.Text(&buf, res); err != nil {
			_ = c.Error(err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=query-result.txt")
		c.Data(http.StatusOK, "text/octet", buf.Bytes())
		return
	}

	view := render.View{Title: page.Title, Offset: req.Paging.Offset, Result: res}
	if params.On(paramShowQuery) {
		view.Query = stmt.Debug()
	}
	if err := render.Write(&buf, format, view); err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, render.ContentType(format), buf.Bytes())
}

// sessionParams merges the request parameters over the ones stored for the
// page and stores the result again. Export and format switches are not kept.
func (h *QueryHandler) sessionParams(c *gin.Context, page string) core.Params {
	params := core.ParamsFromValues(c.Request.URL.Query())
	name := sessionPrefix + page

	if params.Has(paramReset) {
		c.SetCookie(name, "", -1, "/", "", false, true)
		delete(params, paramReset)
		return params
	}

	if raw, err := c.Cookie(name); err == nil && raw != "" {
		if stored, err := url.ParseQuery(raw); err == nil {
			params = params.Merge(core.ParamsFromValues(stored))
		}
	}

	keep := url.Values{}
	for k, v := range params {
		if k == core.ParamSendTxt || k == paramFormat {
			continue
		}
		keep.Set(k, v)
	}
	c.SetCookie(name, keep.Encode(), sessionMaxAge, "/", "", false, true)
	return params
}
