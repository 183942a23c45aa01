// Command cafe is the interactive terminal client.
//
//	cafe <dbname> <port> <user>
//
// Without arguments the connection string comes from DATABASE_URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe/internal/config"
	"github.com/MikeMC777/cafe/internal/console"
	"github.com/MikeMC777/cafe/internal/database"
	"github.com/MikeMC777/cafe/internal/logging"
	"github.com/MikeMC777/cafe/internal/menu"
	"github.com/MikeMC777/cafe/internal/order"
	"github.com/MikeMC777/cafe/internal/report"
	"github.com/MikeMC777/cafe/internal/user"
)

func main() {
	logging.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	cfg.Log()

	dsn := cfg.DatabaseURL
	switch len(os.Args) {
	case 1:
	case 4:
		dsn = config.DSNFromArgs(os.Args[1], os.Args[2], os.Args[3])
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s <dbname> <port> <user>\n", os.Args[0])
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.AutoMigrate {
		if err := database.Migrate(dsn); err != nil {
			logrus.Fatalf("failed to migrate database, error: %v", err)
		}
	}
	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to database, error: %v", err)
	}
	defer func() {
		fmt.Print("Disconnecting from database...")
		pool.Close()
		fmt.Println("Done")
	}()

	menuSvc := menu.NewService(menu.NewPGRepo(pool))
	c := console.New(os.Stdin, os.Stdout, console.Deps{
		Accounts: user.NewService(user.NewPGRepo(pool), menuSvc),
		Catalog:  menuSvc,
		Orders:   order.NewService(order.NewPGRepo(pool)),
		Reports:  report.New(pool),
	})
	if err := c.Run(ctx); err != nil {
		logrus.WithError(err).Error("console stopped")
	}
}
