package server

import (
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ByLCY/textstamp/config"
	"github.com/ByLCY/textstamp/dsl"
	"github.com/ByLCY/textstamp/layout"
	"github.com/ByLCY/textstamp/overlay"
)

// ErrorBody 是合成失败时返回给客户端的固定文本。
const ErrorBody = "Error processing image."

// defaultFields 为模板未引用任何数据时表单展示的字段。
var defaultFields = []string{"day", "text1", "text2", "text3"}

//go:embed form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

// Handler 提供表单页与合成下载。每个请求都在内存中独立完成，不共享输出文件。
type Handler struct {
	doc          *dsl.Document
	baseDir      string
	engine       *overlay.Engine
	downloadName string
	fields       []string
	title        string
	logger       *slog.Logger
	mux          *http.ServeMux
}

// NewHandler 以已解析的模板创建 Handler；baseDir 为模板中相对路径的根目录。
func NewHandler(doc *dsl.Document, baseDir string, cfg *config.Config, logger *slog.Logger) (*Handler, error) {
	if doc == nil {
		return nil, fmt.Errorf("模板为空")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if baseDir != "" {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, fmt.Errorf("解析模板目录失败: %w", err)
		}
		baseDir = abs
	}

	// 用空数据构建一次以提前发现模板错误，同时取得模板级的后备字体与元信息。
	base, err := layout.Build(doc, nil, layout.BuildOptions{BaseDir: baseDir, DropMissing: true})
	if err != nil {
		return nil, fmt.Errorf("模板无效: %w", err)
	}

	opts := cfg.EngineOptions(baseDir, logger)
	if fb := base.Fallbacks(); fb != nil {
		opts.Fallbacks = fb
	}
	opts.Encoder = cfg.Encoder(base.Meta.PDF())

	h := &Handler{
		doc:          doc,
		baseDir:      baseDir,
		engine:       overlay.NewEngine(opts),
		downloadName: downloadName(cfg.Server.DownloadName, opts.Encoder.Ext()),
		fields:       layout.Fields(doc),
		title:        base.Meta.Title,
		logger:       logger,
		mux:          http.NewServeMux(),
	}
	if len(h.fields) == 0 {
		h.fields = defaultFields
	}
	if h.title == "" {
		h.title = base.Name
	}

	h.mux.HandleFunc("GET /{$}", h.serveForm)
	h.mux.HandleFunc("POST /{$}", h.compose)
	h.mux.Handle("GET /healthz", HealthHandler())
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Fields 返回表单字段名。
func (h *Handler) Fields() []string { return h.fields }

func (h *Handler) serveForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title  string
		Fields []string
	}{h.title, h.fields}
	if err := formTemplate.Execute(w, data); err != nil {
		h.logger.Error("渲染表单失败", "err", err)
	}
}

func (h *Handler) compose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, fmt.Errorf("解析表单失败: %w", err))
		return
	}
	res, err := layout.Build(h.doc, map[string][]string(r.PostForm), layout.BuildOptions{
		BaseDir:     h.baseDir,
		DropMissing: true,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.engine.Compose(res.Job())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	enc := h.engine.Encoder()
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.downloadName}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("写入响应失败", "err", err)
		return
	}
	h.logger.Info("已生成图像", "lines", len(res.Overlay.Block.Lines), "bytes", len(data), "remote", r.RemoteAddr)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("合成失败", "err", err, "remote", r.RemoteAddr)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(ErrorBody))
}

// HealthHandler returns a handler for health checks.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})
}

// downloadName 使下载文件名的扩展名与输出格式一致。
func downloadName(name, ext string) string {
	if name == "" {
		name = "output"
	}
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
