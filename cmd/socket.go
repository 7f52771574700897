package cmd

import (
	"context"
	"net"

	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/service"
	"github.com/foomo/menuserver/pkg/handler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewSocketCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:               "socket <url>",
		Short:             "Start socket server",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: urlArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
			)

			l := svr.Logger()

			r, history, err := newRepo(cmd.Context(), l, v, args[0], newRepoHTTPClient(v))
			if err != nil {
				return err
			}

			isLoadedHealtherFn := healthz.NewHealthzerFn(loadedCheck(r))
			svr.AddStartupHealthzers(isLoadedHealtherFn)
			svr.AddReadinessHealthzers(isLoadedHealtherFn)

			svr.AddClosers(func(ctx context.Context) error {
				return history.Close()
			})

			h := handler.NewSocket(l.Named("inst.handler"), r)

			svr.AddServices(
				service.NewGoRoutine(l.Named("go.repo"), "repo", func(ctx context.Context, l *zap.Logger) error {
					return r.Start(ctx)
				}),
				service.NewGoRoutine(l.Named("go.socket"), "socket", func(ctx context.Context, l *zap.Logger) error {
					// accept connections once the first menu is served
					select {
					case <-r.Initialized():
					case <-ctx.Done():
						return nil
					}
					ln, err := net.Listen("tcp", addressFlag(v))
					if err != nil {
						return err
					}
					l.Info("started listening", zap.String("address", ln.Addr().String()))
					return h.Accept(ctx, ln)
				}),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v, "127.0.0.1:8081")
	addRepoFlags(flags, v)
	addGracefulPeriodFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)

	return cmd
}
