package main

import (
	"bytes"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/NectoT/gdscript-to-md-docs/pkg/docs"
)

// docsServer serves the generated markdown as HTML and pushes a reload to
// connected browsers whenever a script in the project changes.
type docsServer struct {
	cfg      docs.Config
	logger   *log.Logger
	md       goldmark.Markdown
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

func newServeCommand() *cobra.Command {
	flags := &generateFlags{}
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the class reference over HTTP with live reload",
		Long: `Generates the class reference into a temporary directory, serves it as
HTML and regenerates it whenever a .gd file in the project changes. Connected
browsers reload automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			fileCfg, err := loadFileConfig(flags.project)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("host") && fileCfg.Serve.Host != "" {
				host = fileCfg.Serve.Host
			}
			if !cmd.Flags().Changed("port") && fileCfg.Serve.Port != 0 {
				port = fileCfg.Serve.Port
			}

			// Serve renders into its own scratch directory; the configured
			// output directory stays untouched.
			tmp, err := os.MkdirTemp("", "gddocs-serve-")
			if err != nil {
				return fmt.Errorf("creating scratch directory: %w", err)
			}
			defer os.RemoveAll(tmp)
			cfg.OutputDir = tmp
			cfg.Logger = log.New(os.Stderr, "", 0)

			return runServe(cfg, host, port)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind the server to")
	cmd.Flags().IntVarP(&port, "port", "P", 8099, "Port to serve on")
	return cmd
}

func runServe(cfg docs.Config, host string, port int) error {
	server := &docsServer{
		cfg:    cfg,
		logger: cfg.Logger,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}

	if err := server.regenerate(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watchProjectDirs(watcher, cfg.ProjectDir); err != nil {
		return fmt.Errorf("watching project: %w", err)
	}
	go server.watchLoop(watcher)

	mux := http.NewServeMux()
	mux.HandleFunc("/__livereload", server.handleLiveReload)
	mux.HandleFunc("/", server.handleDocs)

	addr := fmt.Sprintf("%s:%d", host, port)
	server.logger.Printf("serving class reference on http://%s", addr)
	return http.ListenAndServe(addr, mux)
}

// watchProjectDirs registers the project directory and every subdirectory
// with the watcher. fsnotify does not recurse on its own.
func watchProjectDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// watchLoop debounces file events and regenerates the docs once per burst.
// Editors fire several events per save, and a regeneration sees them all.
func (s *docsServer) watchLoop(watcher *fsnotify.Watcher) {
	var timer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					watcher.Add(event.Name)
				}
			}
			if filepath.Ext(event.Name) != ".gd" {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				if err := s.regenerate(); err != nil {
					s.logger.Printf("regeneration failed: %v", err)
					return
				}
				s.broadcastReload()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Printf("watcher error: %v", err)
		}
	}
}

func (s *docsServer) regenerate() error {
	if err := os.RemoveAll(s.cfg.OutputDir); err != nil {
		return err
	}
	gen, err := docs.NewGenerator(s.cfg)
	if err != nil {
		return err
	}
	return gen.Run()
}

func (s *docsServer) handleLiveReload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}
	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
}

func (s *docsServer) broadcastReload() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *docsServer) handleDocs(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	target := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, filepath.Clean(s.cfg.OutputDir)) {
		http.NotFound(w, r)
		return
	}

	fi, err := os.Stat(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if fi.IsDir() {
		s.renderListing(w, target, r.URL.Path)
		return
	}
	s.renderPage(w, target)
}

// renderListing writes a plain index of the markdown files and
// subdirectories under dir.
func (s *docsServer) renderListing(w http.ResponseWriter, dir, urlPath string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var body bytes.Buffer
	body.WriteString("<h1>" + html.EscapeString(urlPath) + "</h1>\n<ul>\n")
	if urlPath != "/" {
		body.WriteString(`<li><a href="../">..</a></li>` + "\n")
	}
	for _, entry := range entries {
		name := entry.Name()
		href := name
		if entry.IsDir() {
			href += "/"
		} else if filepath.Ext(name) != ".md" {
			continue
		}
		fmt.Fprintf(&body, "<li><a href=%q>%s</a></li>\n", href, html.EscapeString(name))
	}
	body.WriteString("</ul>\n")
	s.writeHTML(w, body.Bytes())
}

// renderPage converts one markdown file to HTML.
func (s *docsServer) renderPage(w http.ResponseWriter, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var body bytes.Buffer
	if err := s.md.Convert(source, &body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeHTML(w, body.Bytes())
}

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Class reference</title>
<style>
body { font-family: sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; }
code { background: #f0f0f0; padding: 0.1em 0.3em; border-radius: 3px; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.6em; }
</style>
</head>
<body>
%s
<script>
new WebSocket("ws://" + location.host + "/__livereload").onmessage = function () {
	location.reload();
};
</script>
</body>
</html>
`

func (s *docsServer) writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, body)
}
