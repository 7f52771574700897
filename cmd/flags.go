package cmd

import (
	"time"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/repo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper, value string) {
	flags.String("address", value, "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "MENU_SERVER_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/menuserver", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "MENU_SERVER_BASE_PATH")
}

func pollFlag(v *viper.Viper) bool {
	return v.GetBool("poll.enabled")
}

func addPollFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("poll", false, "If true, the url arg returns the url of the latest menu document and is polled periodically")
	_ = v.BindPFlag("poll.enabled", flags.Lookup("poll"))
	_ = v.BindEnv("poll.enabled", "MENU_SERVER_POLL")
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", time.Minute, "Specifies the poll interval")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	_ = v.BindEnv("poll.interval", "MENU_SERVER_POLL_INTERVAL")
}

func historyDirFlag(v *viper.Viper) string {
	return v.GetString("history.dir")
}

func addHistoryDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("history-dir", "/var/lib/menuserver", "Where to put the menu snapshots")
	_ = v.BindPFlag("history.dir", flags.Lookup("history-dir"))
	_ = v.BindEnv("history.dir", "MENU_SERVER_HISTORY_DIR")
}

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
	_ = v.BindEnv("history.limit", "MENU_SERVER_HISTORY_LIMIT")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", repo.StorageTypeFilesystem, "Snapshot storage backend (filesystem, blob)")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "MENU_SERVER_STORAGE_TYPE")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Blob bucket url (gs://, s3://, azblob://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "MENU_SERVER_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix inside the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "MENU_SERVER_STORAGE_BLOB_PREFIX")
}

func repositoryTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("repository.timeout")
}

func addRepositoryTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("repository-timeout", 30*time.Second, "Timeout for fetching the menu document")
	_ = v.BindPFlag("repository.timeout", flags.Lookup("repository-timeout"))
	_ = v.BindEnv("repository.timeout", "MENU_SERVER_REPOSITORY_TIMEOUT")
}

func sourceFormatFlag(v *viper.Viper) (menu.Format, error) {
	return menu.ParseFormat(v.GetString("source.format"))
}

func addSourceFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("source-format", "auto", "Format of the menu document (auto, json, yaml, js)")
	_ = v.BindPFlag("source.format", flags.Lookup("source-format"))
	_ = v.BindEnv("source.format", "MENU_SERVER_SOURCE_FORMAT")
}

func defaultSiteFlag(v *viper.Viper) string {
	return v.GetString("default_site")
}

func addDefaultSiteFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("default-site", repo.DefaultSite, "Site name for documents holding a single menu")
	_ = v.BindPFlag("default_site", flags.Lookup("default-site"))
	_ = v.BindEnv("default_site", "MENU_SERVER_DEFAULT_SITE")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", 6, "Compression level of the gzip middleware")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "MENU_SERVER_GZIP_LEVEL")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutdown")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "MENU_SERVER_GRACEFUL_PERIOD")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

// ~ tool flags

func siteFlag(v *viper.Viper) string {
	return v.GetString("site")
}

func addSiteFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site", "", "Site to use, required when the document holds more than one")
	_ = v.BindPFlag("site", flags.Lookup("site"))
}

func depthFlag(v *viper.Viper) int {
	return v.GetInt("depth")
}

func addDepthFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("depth", 0, "Levels to print, 0 prints all")
	_ = v.BindPFlag("depth", flags.Lookup("depth"))
}

func urlsFlag(v *viper.Viper) bool {
	return v.GetBool("urls")
}

func addURLsFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("urls", true, "Print the url of every node")
	_ = v.BindPFlag("urls", flags.Lookup("urls"))
}

func toFlag(v *viper.Viper) (menu.Format, error) {
	return menu.ParseFormat(v.GetString("to"))
}

func addToFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("to", string(menu.FormatJS), "Output format (js, json, yaml)")
	_ = v.BindPFlag("to", flags.Lookup("to"))
}

func outputFlag(v *viper.Viper) string {
	return v.GetString("output")
}

func addOutputFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.StringP("output", "o", "", "Output file, stdout if empty")
	_ = v.BindPFlag("output", flags.Lookup("output"))
}

func varNameFlag(v *viper.Viper) string {
	return v.GetString("var_name")
}

func addVarNameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("var-name", menu.DefaultVarName, "Variable name of the js literal")
	_ = v.BindPFlag("var_name", flags.Lookup("var-name"))
}

func licenseHeaderFlag(v *viper.Viper) string {
	return v.GetString("license_header")
}

func addLicenseHeaderFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("license-header", "", "Comment written on top of the js literal")
	_ = v.BindPFlag("license_header", flags.Lookup("license-header"))
}
