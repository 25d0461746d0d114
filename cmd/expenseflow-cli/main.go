package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/expenseflow/cmd/expenseflow-cli/internal/view"
	"github.com/SscSPs/expenseflow/internal/client"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/platform/config"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const (
	menuNew      = "new"
	menuDrafts   = "drafts"
	menuList     = "list"
	menuApproval = "approvals"
	menuSignOut  = "signout"
	menuQuit     = "quit"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, view.Failure(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg := config.LoadCLIConfig()

	opts := []client.Option{client.WithTimeout(cfg.Timeout)}
	if cfg.APIKey != "" {
		opts = append(opts, client.WithAPIKey(cfg.APIKey))
	}
	if cfg.AccessToken != "" {
		opts = append(opts, client.WithBearerToken(cfg.AccessToken))
	}
	api, err := client.New(cfg.ServerURL, opts...)
	if err != nil {
		return err
	}

	session := client.NewSession(api)
	unsubscribe := session.Subscribe(func(s client.SessionState) {
		logger.Debug("Session changed", slog.String("event", string(s.Event)))
	})
	defer unsubscribe()

	state, err := session.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !state.SignedIn() {
		if state, err = signIn(ctx, session); err != nil {
			return err
		}
	}

	fmt.Println(lipgloss.NewStyle().Bold(true).Padding(1, 0).Render(
		fmt.Sprintf("ExpenseFlow · %s (%s)", state.User.FullName, state.User.Role)))

	for {
		choice, err := menu(ctx, state)
		if err != nil {
			return err
		}
		switch choice {
		case menuQuit:
			return nil
		case menuSignOut:
			return session.SignOut(ctx)
		case menuNew:
			err = newExpense(ctx, api, state.User.ID, cfg, logger)
		case menuDrafts:
			err = resumeDraft(ctx, api, state.User.ID, cfg, logger)
		case menuList:
			err = listExpenses(ctx, api)
		case menuApproval:
			err = view.ReviewPending(ctx, api)
		}
		if err != nil && !errors.Is(err, view.ErrQuit) && !errors.Is(err, huh.ErrUserAborted) {
			if errors.Is(err, client.ErrNetwork) || errors.Is(err, client.ErrTimeout) || errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Println(view.Failure(err.Error()))
		}
	}
}

func signIn(ctx context.Context, session *client.Session) (client.SessionState, error) {
	var code string
	err := ask(ctx, huh.NewInput().
		Title("Google authorization code").
		Description("Sign in through the web app and paste the code, or set EXPENSEFLOW_API_KEY.").
		Value(&code))
	if err != nil {
		return client.SessionState{}, err
	}
	state, err := session.SignIn(ctx, code)
	if err != nil {
		return client.SessionState{}, fmt.Errorf("sign in: %w", err)
	}
	return state, nil
}

func menu(ctx context.Context, state client.SessionState) (string, error) {
	options := []huh.Option[string]{
		huh.NewOption("New expense", menuNew),
		huh.NewOption("Continue a draft", menuDrafts),
		huh.NewOption("My expenses", menuList),
	}
	if state.User.Role.Rank() >= domain.RoleManager.Rank() {
		options = append(options, huh.NewOption("Pending approvals", menuApproval))
	}
	options = append(options, huh.NewOption("Sign out", menuSignOut), huh.NewOption("Quit", menuQuit))

	choice := menuNew
	err := ask(ctx, huh.NewSelect[string]().Title("What would you like to do?").Options(options...).Value(&choice))
	if errors.Is(err, huh.ErrUserAborted) {
		return menuQuit, nil
	}
	return choice, err
}

func newExpense(ctx context.Context, api *client.Client, userID string, cfg config.CLIConfig, logger *slog.Logger) error {
	expenseType := string(domain.TypeTravel)
	err := ask(ctx, huh.NewSelect[string]().Title("Expense type").Options(
		huh.NewOption("Travel", string(domain.TypeTravel)),
		huh.NewOption("Maintenance", string(domain.TypeMaintenance)),
		huh.NewOption("Requisition", string(domain.TypeRequisition)),
	).Value(&expenseType))
	if err != nil {
		return err
	}

	w, err := view.NewWizard(api, userID, domain.ExpenseType(expenseType), nil, cfg.AutosaveDelay, logger)
	if err != nil {
		return err
	}
	_, err = w.Run(ctx)
	return err
}

func resumeDraft(ctx context.Context, api *client.Client, userID string, cfg config.CLIConfig, logger *slog.Logger) error {
	drafts, _, err := api.ListExpenses(ctx, client.ListOptions{Status: domain.StatusDraft, Limit: 50})
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Println(view.RenderExpenses(nil))
		return nil
	}

	options := make([]huh.Option[int], len(drafts))
	for i, d := range drafts {
		options[i] = huh.NewOption(fmt.Sprintf("%s · %s · %s", d.Type, d.TotalAmount.StringFixed(2), d.Description), i)
	}
	var picked int
	if err := ask(ctx, huh.NewSelect[int]().Title("Draft").Options(options...).Value(&picked)); err != nil {
		return err
	}

	draft := drafts[picked]
	w, err := view.NewWizard(api, userID, draft.Type, &draft, cfg.AutosaveDelay, logger)
	if err != nil {
		return err
	}
	_, err = w.Run(ctx)
	return err
}

func listExpenses(ctx context.Context, api *client.Client) error {
	expenses, _, err := api.ListExpenses(ctx, client.ListOptions{Limit: 50})
	if err != nil {
		return err
	}
	fmt.Println(view.RenderExpenses(expenses))
	return nil
}

// ask runs a single field as its own form.
func ask(ctx context.Context, field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).RunWithContext(ctx)
}
