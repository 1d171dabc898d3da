package config

// Config represents the complete rotbench-runner configuration.
type Config struct {
	Binary      string     `yaml:"binary"`
	Prefix      string     `yaml:"prefix"`
	Parallelism int        `yaml:"parallelism"`
	ILPThreads  int        `yaml:"ilp_threads"`
	Iterations  int        `yaml:"iterations"`
	KValues     []int      `yaml:"k_values"`
	Maps        []MapPair  `yaml:"maps"`
	Output      OutputDirs `yaml:"output"`
	LogLevel    string     `yaml:"log_level"`
	LockPath    string     `yaml:"lock_path,omitempty"`
}

// MapPair couples an OSM map with its preprocessed pmap companion.
type MapPair struct {
	Map  string `yaml:"map"`
	PMap string `yaml:"pmap"`
}

// OutputDirs lists where the external binary's artifacts and our error logs go.
type OutputDirs struct {
	CSVDir      string `yaml:"csv_dir"`
	GraphDir    string `yaml:"graph_dir"`
	IntervalDir string `yaml:"interval_dir"`
	ErrorDir    string `yaml:"error_dir"`
}

// Defaults returns the configuration the runner uses when no file is given.
func Defaults() *Config {
	return &Config{
		Binary:      "/home/lukas/src/LabelRotation/LabelRotation",
		Prefix:      "instance",
		Parallelism: 2,
		ILPThreads:  1,
		Iterations:  1,
		KValues:     []int{5, 10, -1},
		Maps: []MapPair{
			{
				Map:  "/home/lukas/Downloads/maps/karlsruhe.osm",
				PMap: "/home/lukas/Downloads/maps/karlsruhe.pycgr",
			},
		},
		Output: OutputDirs{
			CSVDir:      "/tmp/out/csvs",
			GraphDir:    "/tmp/out/graphs",
			IntervalDir: "/tmp/out/intervals",
			ErrorDir:    "/tmp/out/errors",
		},
		LogLevel: "info",
	}
}
