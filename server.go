package inkpress

import (
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/calmloop/inkpress/views"
)

const previewSessionName = "inkpress_preview"

// DevServer serves the built site locally, rebuilds on change, and exposes
// draft previews that never appear in the deployable output.
type DevServer struct {
	Engine *Engine
	Echo   *echo.Echo
	Cache  *DocCache

	limiter *RateLimiter

	mu           sync.Mutex
	lastBuildErr error
}

// NewDevServer wires a dev server around the engine.
func NewDevServer(e *Engine) *DevServer {
	s := &DevServer{
		Engine:  e,
		Echo:    echo.New(),
		Cache:   NewDocCache(e.LoadContent, e.Config.DocCacheTTL),
		limiter: NewRateLimiter(10, time.Minute),
	}
	s.Echo.HideBanner = true
	s.setupMiddleware()
	s.setupRoutes()
	for _, fn := range e.customRoutes {
		fn(s)
	}
	return s
}

// Start performs an initial build, begins watching for changes, and serves
// until the listener fails.
func (s *DevServer) Start() error {
	s.Rebuild()

	stop, err := Watch([]string{
		s.Engine.Config.ContentDir,
		s.Engine.Config.LayoutsDir,
		s.Engine.Config.StaticDir,
	}, 500*time.Millisecond, func() {
		s.Rebuild()
	})
	if err != nil {
		return err
	}
	defer stop()

	if err := s.Echo.Start(s.Engine.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Rebuild runs a build, records the outcome for the error overlay, and
// invalidates the document cache.
func (s *DevServer) Rebuild() {
	_, err := s.Engine.Build(BuildOptions{})
	s.mu.Lock()
	s.lastBuildErr = err
	s.mu.Unlock()
	s.Cache.Invalidate()
	if err != nil {
		s.Echo.Logger.Errorf("build failed: %v", err)
	}
}

func (s *DevServer) buildErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuildErr
}

func (s *DevServer) siteInfo() views.SiteInfo {
	return views.SiteInfo{Title: s.Engine.Config.Title, URL: s.Engine.Config.URL}
}

func (s *DevServer) setupMiddleware() {
	e := s.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	e.Use(session.Middleware(s.newSessionStore()))

	// Nothing the dev server serves should be cached by the browser;
	// authors need to see each rebuild immediately.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			return next(c)
		}
	})
}

func (s *DevServer) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(s.Engine.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *DevServer) setupRoutes() {
	e := s.Echo

	e.GET("/drafts/", s.handleDraftList)
	e.POST("/drafts/toggle/", s.handleDraftToggle)
	e.GET("/preview/:slug/", s.handlePreview)

	// Everything else is the built site.
	e.GET("/*", s.handleSite)
}

// handleSite serves files from the output dir, mapping directory-style
// paths to their index.html. A pending build error takes over the page so
// the author sees it in the browser.
func (s *DevServer) handleSite(c echo.Context) error {
	if err := s.buildErr(); err != nil {
		return RenderStatus(c, http.StatusInternalServerError, views.BuildError(s.siteInfo(), err.Error()))
	}

	urlPath := c.Request().URL.Path
	if strings.Contains(urlPath, "..") {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	fsys := http.Dir(s.Engine.Config.OutputDir)
	name := urlPath
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}
	f, err := fsys.Open(name)
	if err != nil {
		// Extensionless path without trailing slash: try the directory form.
		if !strings.Contains(name, ".") {
			if f2, err2 := fsys.Open(name + "/index.html"); err2 == nil {
				f2.Close()
				return c.Redirect(http.StatusMovedPermanently, urlPath+"/")
			}
		}
		return echo.NewHTTPError(http.StatusNotFound)
	}
	f.Close()
	return c.File(filepath.Join(s.Engine.Config.OutputDir, filepath.FromSlash(name)))
}

func (s *DevServer) handleDraftList(c echo.Context) error {
	drafts, err := s.Cache.Drafts()
	if err != nil {
		return err
	}
	items := make([]views.DraftItem, 0, len(drafts))
	for _, d := range drafts {
		date := ""
		if !d.Date.IsZero() {
			date = d.Date.Format("2006-01-02")
		}
		items = append(items, views.DraftItem{
			Title:   d.Title,
			Slug:    d.Slug,
			Date:    date,
			Summary: d.Summary,
		})
	}
	return Render(c, views.DraftList(s.siteInfo(), items, previewEnabled(c)))
}

func (s *DevServer) handleDraftToggle(c echo.Context) error {
	if !s.limiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Slow down")
	}
	sess, err := session.Get(previewSessionName, c)
	if err != nil {
		return err
	}
	enabled, _ := sess.Values["enabled"].(bool)
	sess.Values["enabled"] = !enabled
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/drafts/")
}

func (s *DevServer) handlePreview(c echo.Context) error {
	doc, err := s.Cache.GetBySlug(c.Param("slug"))
	if err != nil {
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	if doc.Draft && !previewEnabled(c) {
		return c.Redirect(http.StatusSeeOther, "/drafts/")
	}
	return Render(c, views.Preview(s.siteInfo(), doc.Title, s.Engine.Markdown.Component(doc.Body)))
}

// previewEnabled reports whether this browser has opted into draft previews.
func previewEnabled(c echo.Context) bool {
	sess, err := session.Get(previewSessionName, c)
	if err != nil {
		return false
	}
	enabled, ok := sess.Values["enabled"].(bool)
	return ok && enabled
}

func (s *DevServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(s.siteInfo()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(s.siteInfo()))
		return
	}
	s.Echo.DefaultHTTPErrorHandler(err, c)
}
