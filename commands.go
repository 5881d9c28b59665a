package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CLICommand is the positional action given on the command line.
type CLICommand string

const (
	CommandList       CLICommand = "list"
	CommandPrioritize CLICommand = "prioritize"
	CommandAssigned   CLICommand = "assigned"
	CommandAnalyze    CLICommand = "analyze"
	CommandRecommend  CLICommand = "recommend"
	CommandComment    CLICommand = "comment"
	CommandNotify     CLICommand = "notify"
)

// prioritizeFetchLimit is how many issues the scoring commands pull before
// ranking; the display limit cuts the list afterwards.
const prioritizeFetchLimit = 100

// UsageError marks errors that should print usage and exit with the usage
// status instead of the generic failure status.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string {
	return e.Message
}

const usageText = `Usage: github-issue-agent <action> [flags]

Actions:
  list        List open issues
  prioritize  List open issues ranked by priority score
  assigned    List open issues assigned to a user (requires --username)
  analyze     Analyze a single issue in depth (requires --issue)
  recommend   Recommend issues to contribute to
  comment     Post a comment on an issue (requires --issue and --message)
  notify      Send recommendations to the configured Telegram chat

Flags:
  --repo       GitHub repository in owner/repo form
  --token      GitHub personal access token
  --config     Path to config file (default: mcp_config.json)
  --limit      Maximum number of issues to display (default: 10)
  --expertise  Comma-separated expertise areas, persisted to the config file
  --minimal    Use the minimal scoring weights
  --username   GitHub username for the assigned action
  --issue      Issue number for the analyze and comment actions
  --message    Comment text for the comment action
`

// CLIOptions is the parsed command line.
type CLIOptions struct {
	Command     CLICommand
	Repo        string
	Token       string
	ConfigPath  string
	Limit       int
	Expertise   []string
	Minimal     bool
	Username    string
	IssueNumber int
	Message     string
}

// ParseCLIArgs parses os.Args[1:] style arguments. The first argument is
// the action; everything after it is flags. Validation of per-action
// required flags happens here, before any network call.
func ParseCLIArgs(args []string) (*CLIOptions, error) {
	if len(args) == 0 {
		return nil, UsageError{Message: "no action specified"}
	}

	command := CLICommand(args[0])
	switch command {
	case CommandList, CommandPrioritize, CommandAssigned, CommandAnalyze, CommandRecommend, CommandComment, CommandNotify:
	default:
		return nil, UsageError{Message: fmt.Sprintf("unknown action %q", args[0])}
	}

	opts := &CLIOptions{Command: command}
	var expertise string

	fs := flag.NewFlagSet(string(command), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Repo, "repo", "", "GitHub repository (owner/repo)")
	fs.StringVar(&opts.Token, "token", "", "GitHub personal access token")
	fs.StringVar(&opts.ConfigPath, "config", "", "path to config file")
	fs.IntVar(&opts.Limit, "limit", 10, "maximum number of issues to display")
	fs.StringVar(&expertise, "expertise", "", "comma-separated expertise areas")
	fs.BoolVar(&opts.Minimal, "minimal", false, "use minimal scoring weights")
	fs.StringVar(&opts.Username, "username", "", "GitHub username")
	fs.IntVar(&opts.IssueNumber, "issue", 0, "issue number")
	fs.StringVar(&opts.Message, "message", "", "comment text")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, UsageError{Message: err.Error()}
	}

	for _, area := range strings.Split(expertise, ",") {
		area = strings.TrimSpace(area)
		if area != "" {
			opts.Expertise = append(opts.Expertise, area)
		}
	}

	if opts.Limit <= 0 {
		return nil, UsageError{Message: "--limit must be positive"}
	}

	switch command {
	case CommandAssigned:
		if opts.Username == "" {
			return nil, UsageError{Message: "assigned requires --username"}
		}
	case CommandAnalyze:
		if opts.IssueNumber <= 0 {
			return nil, UsageError{Message: "analyze requires --issue"}
		}
	case CommandComment:
		if opts.IssueNumber <= 0 {
			return nil, UsageError{Message: "comment requires --issue"}
		}
		if opts.Message == "" {
			return nil, UsageError{Message: "comment requires --message"}
		}
	}

	return opts, nil
}

// App wires the config, client, scorer and presenter together for one
// command invocation.
type App struct {
	opts      *CLIOptions
	config    *Config
	client    *AgentClient
	scorer    *Scorer
	presenter *Presenter
	log       *Logger
}

func NewApp(opts *CLIOptions, out io.Writer, logger *Logger) (*App, error) {
	config, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(opts.Expertise) > 0 {
		config.Agent.UserExpertise = opts.Expertise
		if err := config.Save(opts.ConfigPath); err != nil {
			logger.Warn("Could not update config file: %v", err)
		} else {
			fmt.Fprintf(out, "Updated expertise in config file: %s\n", strings.Join(opts.Expertise, ", "))
		}
	}

	repository := opts.Repo
	if repository == "" {
		repository = config.GitHub.Repository
	}
	if repository == "" {
		return nil, UsageError{Message: "no repository specified, use --repo or configure in mcp_config.json"}
	}

	client, err := NewAgentClient(repository, config.ResolveToken(opts.Token), logger)
	if err != nil {
		return nil, err
	}

	weights := DefaultWeights()
	if opts.Minimal {
		weights = MinimalWeights()
	}

	return &App{
		opts:      opts,
		config:    config,
		client:    client,
		scorer:    NewScorer(config, weights),
		presenter: NewPresenter(out),
		log:       logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.client.VerifyConnection(ctx); err != nil {
		return err
	}

	switch a.opts.Command {
	case CommandList:
		return a.runList(ctx)
	case CommandPrioritize:
		return a.runPrioritize(ctx)
	case CommandAssigned:
		return a.runAssigned(ctx)
	case CommandAnalyze:
		return a.runAnalyze(ctx)
	case CommandRecommend:
		return a.runRecommend(ctx)
	case CommandComment:
		return a.runComment(ctx)
	case CommandNotify:
		return a.runNotify(ctx)
	default:
		return UsageError{Message: fmt.Sprintf("unknown action %q", a.opts.Command)}
	}
}

func (a *App) runList(ctx context.Context) error {
	issues := a.client.GetIssues(ctx, "open", "created", "desc", a.opts.Limit)
	a.presenter.PrintIssueList(a.client.Repository(), issues)
	return nil
}

func (a *App) runPrioritize(ctx context.Context) error {
	issues := a.client.GetIssues(ctx, "open", "created", "desc", prioritizeFetchLimit)
	prioritized, err := a.scorer.Prioritize(issues)
	if err != nil {
		return err
	}
	a.presenter.PrintPrioritized(a.client.Repository(), prioritized, a.opts.Limit)
	return nil
}

func (a *App) runAssigned(ctx context.Context) error {
	issues := a.client.GetAssignedIssues(ctx, a.opts.Username)
	a.presenter.PrintAssigned(a.client.Repository(), a.opts.Username, issues, a.opts.Limit)
	return nil
}

func (a *App) runAnalyze(ctx context.Context) error {
	analyzer := NewIssueAnalyzer(a.client, a.log)
	analysis, err := analyzer.Analyze(ctx, a.opts.IssueNumber)
	if err != nil {
		return err
	}
	a.presenter.PrintAnalysis(analysis)
	return nil
}

func (a *App) recommended(ctx context.Context) ([]Issue, error) {
	issues := a.client.GetIssues(ctx, "open", "created", "desc", prioritizeFetchLimit)
	prioritized, err := a.scorer.Prioritize(issues)
	if err != nil {
		return nil, err
	}
	return Recommend(prioritized, a.opts.Limit), nil
}

func (a *App) runRecommend(ctx context.Context) error {
	recommended, err := a.recommended(ctx)
	if err != nil {
		return err
	}
	a.presenter.PrintRecommendations(a.client.Repository(), recommended)
	return nil
}

func (a *App) runComment(ctx context.Context) error {
	comment, err := a.client.CreateComment(ctx, a.opts.IssueNumber, a.opts.Message)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.presenter.w, "Comment posted on issue #%d by %s\n", a.opts.IssueNumber, comment.Author)
	return nil
}

func (a *App) runNotify(ctx context.Context) error {
	botToken := a.config.Notifications.TelegramBotToken
	if botToken == "" {
		botToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	chatID := a.config.Notifications.TelegramChatID
	if chatID == 0 {
		if env := os.Getenv("TELEGRAM_CHAT_ID"); env != "" {
			parsed, err := strconv.ParseInt(env, 10, 64)
			if err != nil {
				return ConfigValidationError{Field: "TELEGRAM_CHAT_ID", Message: "must be an integer"}
			}
			chatID = parsed
		}
	}
	if botToken == "" || chatID == 0 {
		return ConfigValidationError{
			Field:   "notifications",
			Message: "telegram_bot_token and telegram_chat_id are required for notify",
		}
	}

	recommended, err := a.recommended(ctx)
	if err != nil {
		return err
	}
	if len(recommended) == 0 {
		a.log.Info("No issues to notify about in %s", a.client.Repository())
		return nil
	}

	notifier, err := NewTelegramNotifier(botToken, chatID, a.log)
	if err != nil {
		return err
	}
	if err := notifier.SendRecommendations(a.client.Repository(), recommended); err != nil {
		return err
	}

	fmt.Fprintf(a.presenter.w, "Sent %d recommendations to Telegram\n", len(recommended))
	return nil
}
