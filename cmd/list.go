package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/shopapi/internal/adapters/repository"
	"github.com/okian/shopapi/internal/domain/model"
	"github.com/okian/shopapi/pkg/logger"
)

// newListCmd prints every row of one table straight from the database file.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list products|users",
		Short:     "Print a table's rows from the configured database",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"products", "users"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func runList(ctx context.Context, out io.Writer, what string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, logger.Nop())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := repository.Open(ctx, cfg.DatabasePath,
		repository.WithMaxOpenConns(cfg.MaxOpenConns),
		repository.WithBusyTimeout(time.Duration(cfg.BusyTimeoutMS)*time.Millisecond),
	)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	switch what {
	case "products":
		products, err := store.ListProducts(ctx)
		if err != nil {
			return err
		}
		renderProducts(out, products)
	case "users":
		users, err := store.ListUsers(ctx)
		if err != nil {
			return err
		}
		renderUsers(out, users)
	default:
		return fmt.Errorf("unknown table %q", what)
	}
	return nil
}

func renderProducts(out io.Writer, products []model.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "title", "description", "photo", "price", "sale", "availableProduct"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Title, p.Description, p.Photo, strconv.FormatFloat(p.Price, 'f', -1, 64), p.Sale, p.AvailableProduct})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "rows", len(products)})
	t.Render()
}

func renderUsers(out io.Writer, users []model.User) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "email", "firstName", "lastName", "cardNumber", "cardCRV", "cardAddress", "cardName"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID, u.Email, u.FirstName, u.LastName, u.CardNumber, u.CardCRV, u.CardAddress, u.CardName})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "rows", len(users)})
	t.Render()
}
