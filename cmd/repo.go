package cmd

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/repo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// addRepoFlags flags shared by the http and the socket command
func addRepoFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addPollFlag(flags, v)
	addPollIntervalFlag(flags, v)
	addHistoryDirFlag(flags, v)
	addHistoryLimitFlag(flags, v)
	addStorageTypeFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)
	addSourceFormatFlag(flags, v)
	addDefaultSiteFlag(flags, v)
}

func newRepo(ctx context.Context, l *zap.Logger, v *viper.Viper, url string, httpClient *http.Client) (*repo.Repo, *repo.History, error) {
	format, err := sourceFormatFlag(v)
	if err != nil {
		return nil, nil, err
	}

	storageType := storageTypeFlag(v)
	blobBucket := storageBlobBucketFlag(v)
	blobPrefix := storageBlobPrefixFlag(v)
	if storageType != repo.StorageTypeBlob && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but storage-type is not 'blob'; blob config will be ignored",
			zap.String("storage-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}
	if storageType == repo.StorageTypeBlob {
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", repo.BlobProvider(blobBucket)),
		)
	} else {
		l.Info("using filesystem storage", zap.String("dir", historyDirFlag(v)))
	}

	storage, err := repo.NewStorage(ctx, storageType, historyDirFlag(v), blobBucket, blobPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage: %w", err)
	}

	history, err := repo.NewHistory(l.Named("inst.history"),
		repo.HistoryWithStorage(storage),
		repo.HistoryWithHistoryDir(historyDirFlag(v)),
		repo.HistoryWithHistoryLimit(historyLimitFlag(v)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create history: %w", err)
	}

	r := repo.New(l.Named("inst.repo"),
		url,
		history,
		repo.WithHTTPClient(httpClient),
		repo.WithPoll(pollFlag(v)),
		repo.WithPollInterval(pollIntervalFlag(v)),
		repo.WithSourceFormat(format),
		repo.WithDefaultSite(defaultSiteFlag(v)),
	)
	return r, history, nil
}

func newRepoHTTPClient(v *viper.Viper) *http.Client {
	return keelhttp.NewHTTPClient(
		keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
		keelhttp.HTTPClientWithTelemetry(),
	)
}

// loadedCheck fails until the first menu is loaded
func loadedCheck(r *repo.Repo) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if !r.Loaded() {
			return errors.New("menu not loaded yet")
		}
		return nil
	}
}

func urlArgCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var comps []string
	if len(args) == 0 {
		comps = cobra.AppendActiveHelp(comps, "You must specify the url of the menu document")
	} else {
		comps = cobra.AppendActiveHelp(comps, "This command does not take any more arguments")
	}
	return comps, cobra.ShellCompDirectiveNoFileComp
}

// ~ document tools

// loadDocument reads and decodes a menu document for the tool commands
func loadDocument(ctx context.Context, v *viper.Viper, source string) (map[string]*menu.Menu, error) {
	data, err := repo.ReadSource(ctx, keelhttp.NewHTTPClient(keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v))), source)
	if err != nil {
		return nil, err
	}
	format, err := sourceFormatFlag(v)
	if err != nil {
		return nil, err
	}
	if format == menu.FormatAuto {
		format = menu.DetectFormat(source, data)
	}
	return repo.DecodeDocument(format, data, defaultSiteFlag(v))
}

// selectSite picks the requested site or the only one
func selectSite(menus map[string]*menu.Menu, site string) (string, *menu.Menu, error) {
	if site != "" {
		m, ok := menus[site]
		if !ok {
			return "", nil, errors.Errorf("site %q not found, document holds %v", site, siteNames(menus))
		}
		return site, m, nil
	}
	if len(menus) != 1 {
		return "", nil, errors.Errorf("document holds %d sites %v, choose one with --site", len(menus), siteNames(menus))
	}
	for name, m := range menus {
		return name, m, nil
	}
	return "", nil, errors.New("document does not contain any site")
}

func siteNames(menus map[string]*menu.Menu) []string {
	ret := make([]string, 0, len(menus))
	for name := range menus {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
