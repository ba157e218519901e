package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"streamhub/internal/grpcserver"
	"streamhub/internal/logging"
	"streamhub/internal/shelves"
	"streamhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type api struct {
	client    *http.Client
	baseURL   string
	tokenPath string
}

func main() {
	global := flag.NewFlagSet("streamhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	_ = global.Parse(os.Args[1:])

	logging.Init(logging.Config{Level: "info", Format: "console"})

	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, sub, rest := args[0], "", []string{}
	if len(args) > 1 {
		sub, rest = args[1], args[2:]
	}

	ctx := context.Background()
	a := &api{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   *baseURL,
		tokenPath: *tokenPath,
	}

	switch cmd {
	case "auth":
		a.handleAuth(ctx, sub, rest)
	case "profile":
		a.handleProfile(ctx, sub, rest)
	case "titles":
		a.handleTitles(ctx, sub, rest)
	case "shelves":
		a.handleShelves(ctx, sub, rest)
	case "watch":
		a.handleWatch(ctx, sub, rest)
	case "like":
		a.handleLike(ctx, sub, rest)
	case "catalog":
		handleCatalog(ctx, sub, rest)
	case "sync":
		a.handleSync(sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (a *api) handleAuth(ctx context.Context, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *email == "" || *password == "" {
			fatalf("email and password are required")
		}

		var resp tokenResponse
		payload := map[string]string{"email": *email, "password": *password}
		if err := a.do(ctx, http.MethodPost, "/api/login", "", payload, &resp); err != nil {
			fatalf("login failed: %v", err)
		}
		a.storeToken(resp.Token)
		fmt.Println("logged in, select a profile with: streamhub profile select -id <id>")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *name == "" || *email == "" || *password == "" {
			fatalf("name, email and password are required")
		}

		var resp struct {
			Token   string         `json:"token"`
			Profile models.Profile `json:"profile"`
		}
		payload := map[string]string{"fullName": *name, "email": *email, "password": *password}
		if err := a.do(ctx, http.MethodPost, "/api/register", "", payload, &resp); err != nil {
			fatalf("register failed: %v", err)
		}
		a.storeToken(resp.Token)
		fmt.Printf("registered, default profile %q (%s)\n", resp.Profile.Name, resp.Profile.ID)
	case "logout":
		token, _ := readToken(a.tokenPath)
		if token != "" {
			if err := a.do(ctx, http.MethodPost, "/api/logout", token, nil, nil); err != nil {
				logging.Warn().Err(err).Msg("server logout failed")
			}
		}
		if err := clearToken(a.tokenPath); err != nil {
			fatalf("clear token: %v", err)
		}
		fmt.Println("logged out")
	default:
		fatalf("usage: streamhub auth <login|register|logout>")
	}
}

func (a *api) handleProfile(ctx context.Context, sub string, args []string) {
	token := mustToken(a.tokenPath)
	switch sub {
	case "list":
		var resp any
		if err := a.do(ctx, http.MethodGet, "/api/profiles", token, nil, &resp); err != nil {
			fatalf("list profiles failed: %v", err)
		}
		printJSON(resp)
	case "create":
		fs := flag.NewFlagSet("profile create", flag.ExitOnError)
		name := fs.String("name", "", "profile name")
		_ = fs.Parse(args)
		if *name == "" {
			fatalf("name is required")
		}
		var resp any
		if err := a.do(ctx, http.MethodPost, "/api/profiles", token, map[string]string{"name": *name}, &resp); err != nil {
			fatalf("create profile failed: %v", err)
		}
		printJSON(resp)
	case "select":
		fs := flag.NewFlagSet("profile select", flag.ExitOnError)
		id := fs.String("id", "", "profile id")
		_ = fs.Parse(args)
		if *id == "" {
			fatalf("id is required")
		}
		var resp tokenResponse
		if err := a.do(ctx, http.MethodPost, "/api/profiles/select", token, map[string]string{"profileId": *id}, &resp); err != nil {
			fatalf("select profile failed: %v", err)
		}
		a.storeToken(resp.Token)
		fmt.Println("profile selected")
	default:
		fatalf("usage: streamhub profile <list|create|select>")
	}
}

func filterQuery(fs *flag.FlagSet, args []string) url.Values {
	q := fs.String("q", "", "text search over name and description")
	genre := fs.String("genre", "", "exact genre")
	watched := fs.String("watched", "", "all, yes or no")
	_ = fs.Parse(args)

	v := url.Values{}
	for key, val := range map[string]string{"q": *q, "genre": *genre, "watched": *watched} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

func (a *api) handleTitles(ctx context.Context, sub string, args []string) {
	token := mustToken(a.tokenPath)
	switch sub {
	case "list":
		v := filterQuery(flag.NewFlagSet("titles list", flag.ExitOnError), args)
		var resp any
		if err := a.do(ctx, http.MethodGet, "/api/titles?"+v.Encode(), token, nil, &resp); err != nil {
			fatalf("list titles failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("titles show", flag.ExitOnError)
		id := fs.String("id", "", "title id")
		_ = fs.Parse(args)
		if *id == "" {
			fatalf("id is required")
		}
		var resp any
		if err := a.do(ctx, http.MethodGet, "/api/titles/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			fatalf("show title failed: %v", err)
		}
		printJSON(resp)
	default:
		fatalf("usage: streamhub titles <list|show>")
	}
}

func (a *api) handleShelves(ctx context.Context, sub string, args []string) {
	token := mustToken(a.tokenPath)
	var path string
	switch sub {
	case "home", "recent", "recommendations", "popular":
		path = "/api/" + sub
	case "newest":
		fs := flag.NewFlagSet("shelves newest", flag.ExitOnError)
		limit := fs.Int("limit", 20, "max titles")
		_ = fs.Parse(args)
		path = "/api/newest?limit=" + strconv.Itoa(*limit)
	case "genres":
		path = "/api/genres/rows"
	case "browse":
		v := filterQuery(flag.NewFlagSet("shelves browse", flag.ExitOnError), args)
		path = "/api/browse?" + v.Encode()
	default:
		fatalf("usage: streamhub shelves <home|recent|recommendations|popular|newest|genres|browse>")
	}

	var resp any
	if err := a.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		fatalf("shelves %s failed: %v", sub, err)
	}
	printJSON(resp)
}

func (a *api) handleWatch(ctx context.Context, sub string, args []string) {
	token := mustToken(a.tokenPath)
	switch sub {
	case "save":
		fs := flag.NewFlagSet("watch save", flag.ExitOnError)
		title := fs.String("title", "", "title id")
		pos := fs.Float64("pos", 0, "position in seconds")
		done := fs.Bool("done", false, "mark completed")
		_ = fs.Parse(args)
		if *title == "" {
			fatalf("title is required")
		}
		payload := map[string]any{"titleId": *title, "positionSec": *pos, "completed": *done}
		if err := a.do(ctx, http.MethodPost, "/api/watch", token, payload, nil); err != nil {
			fatalf("save watch failed: %v", err)
		}
		fmt.Println("saved")
	case "history":
		var resp any
		if err := a.do(ctx, http.MethodGet, "/api/watch", token, nil, &resp); err != nil {
			fatalf("watch history failed: %v", err)
		}
		printJSON(resp)
	default:
		fatalf("usage: streamhub watch <save|history>")
	}
}

func (a *api) handleLike(ctx context.Context, sub string, args []string) {
	token := mustToken(a.tokenPath)
	fs := flag.NewFlagSet("like "+sub, flag.ExitOnError)
	title := fs.String("title", "", "title id")
	_ = fs.Parse(args)

	switch sub {
	case "add", "remove":
		if *title == "" {
			fatalf("title is required")
		}
		payload := map[string]any{"titleId": *title, "like": sub == "add"}
		if err := a.do(ctx, http.MethodPost, "/api/likes", token, payload, nil); err != nil {
			fatalf("like %s failed: %v", sub, err)
		}
		fmt.Println("ok")
	case "list":
		var resp any
		if err := a.do(ctx, http.MethodGet, "/api/likes", token, nil, &resp); err != nil {
			fatalf("list likes failed: %v", err)
		}
		printJSON(resp)
	default:
		fatalf("usage: streamhub like <add|remove|list>")
	}
}

// handleCatalog talks to the gRPC catalog service directly.
func handleCatalog(ctx context.Context, sub string, args []string) {
	fs := flag.NewFlagSet("catalog "+sub, flag.ExitOnError)
	addr := fs.String("grpc", "127.0.0.1:9090", "gRPC server address")
	profile := fs.String("profile", "", "profile id")
	q := fs.String("q", "", "text search")
	genre := fs.String("genre", "", "exact genre")
	watched := fs.String("watched", "", "all, yes or no")
	_ = fs.Parse(args)

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fatalf("grpc dial: %v", err)
	}
	defer conn.Close()
	client := grpcserver.NewCatalogClient(conn)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch sub {
	case "list":
		resp, err := client.ListTitles(ctx, &grpcserver.ListTitlesRequest{
			Query: *q, Genre: *genre, Watched: *watched, ProfileID: *profile,
		})
		if err != nil {
			fatalf("ListTitles: %v", err)
		}
		printJSON(resp)
	case "shelves":
		resp, err := client.GetShelves(ctx, &grpcserver.GetShelvesRequest{ProfileID: *profile})
		if err != nil {
			fatalf("GetShelves: %v", err)
		}
		printHome(resp.Shelves)
	default:
		fatalf("usage: streamhub catalog <list|shelves>")
	}
}

func printHome(h shelves.Home) {
	fmt.Printf("recent (%d)\n", len(h.Recent.Items))
	for _, it := range h.Recent.Items {
		fmt.Printf("  %-30s %5ds\n", it.Title.Name, it.PositionSec)
	}
	fmt.Printf("recommended, based on %v (%d)\n", h.Recommendations.BasedOn, len(h.Recommendations.Titles))
	for _, t := range h.Recommendations.Titles {
		fmt.Printf("  %s\n", t.Name)
	}
	fmt.Printf("popular (%d)\n", len(h.Popular.Items))
	for _, it := range h.Popular.Items {
		fmt.Printf("  %-30s %d views\n", it.Title.Name, it.Views)
	}
	fmt.Printf("newest (%d)\n", len(h.Newest.Titles))
	for _, t := range h.Newest.Titles {
		fmt.Printf("  %s\n", t.Name)
	}
	for _, g := range h.Genres.Order {
		fmt.Printf("%s (%d)\n", g, len(h.Genres.Genres[g]))
	}
}

func (a *api) handleSync(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		profile := fs.String("profile", "", "only receive events for this profile id")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			if endpoint, err = websocketURL(a.baseURL, "/ws", *profile); err != nil {
				fatalf("ws url: %v", err)
			}
		}
		for {
			if err := runWebSocket(endpoint); err != nil {
				logging.Warn().Err(err).Msg("sync disconnected")
			}
			time.Sleep(time.Second)
		}
	default:
		fatalf("usage: streamhub sync listen")
	}
}

func printUsage() {
	fmt.Println("streamhub [-api url] [-token path] <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  profile list|create|select")
	fmt.Println("  titles list|show")
	fmt.Println("  shelves home|recent|recommendations|popular|newest|genres|browse")
	fmt.Println("  watch save|history")
	fmt.Println("  like add|remove|list")
	fmt.Println("  catalog list|shelves   (gRPC)")
	fmt.Println("  sync listen")
}
