package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Target    Target    `yaml:"target"`
	Benchmark Benchmark `yaml:"benchmark"`
	Results   Results   `yaml:"results"`
}

type Target struct {
	Kind   string       `yaml:"kind"`
	SSH    SSHTarget    `yaml:"ssh"`
	Docker DockerTarget `yaml:"docker"`
}

type SSHTarget struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	KeyFile       string `yaml:"key_file"`
	Passphrase    string `yaml:"passphrase"`
	Password      string `yaml:"password"`
	KnownHosts    string `yaml:"known_hosts"`
	StrictHostKey bool   `yaml:"strict_host_key"`
	ScratchDir    string `yaml:"scratch_dir"`
	MachineType   string `yaml:"machine_type"`
	DialTimeoutS  int    `yaml:"dial_timeout_s"`
}

type DockerTarget struct {
	Image       string `yaml:"image"`
	CPUs        int    `yaml:"cpus"`
	ScratchDir  string `yaml:"scratch_dir"`
	MachineType string `yaml:"machine_type"`
}

type Benchmark struct {
	Subset  string `yaml:"subset"`
	DataDir string `yaml:"data_dir"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Target.Kind {
	case "ssh":
		s := &cfg.Target.SSH
		if s.Host == "" {
			return fmt.Errorf("ssh target: host is required")
		}
		if s.User == "" {
			return fmt.Errorf("ssh target: user is required")
		}
		if s.Port == 0 {
			s.Port = 22
		}
		if s.ScratchDir == "" {
			s.ScratchDir = "/scratch"
		}
		if s.MachineType == "" {
			s.MachineType = s.Host
		}
		if s.DialTimeoutS == 0 {
			s.DialTimeoutS = 15
		}
	case "docker":
		d := &cfg.Target.Docker
		if d.Image == "" {
			return fmt.Errorf("docker target: image is required")
		}
		if d.ScratchDir == "" {
			d.ScratchDir = "/scratch"
		}
		if d.MachineType == "" {
			d.MachineType = d.Image
		}
	case "":
		return fmt.Errorf("target kind is required (ssh or docker)")
	default:
		return fmt.Errorf("unknown target kind %q (want ssh or docker)", cfg.Target.Kind)
	}
	switch cfg.Benchmark.Subset {
	case "":
		cfg.Benchmark.Subset = "int"
	case "int", "fp", "all":
	default:
		return fmt.Errorf("benchmark subset must be int, fp or all, got %q", cfg.Benchmark.Subset)
	}
	if cfg.Benchmark.DataDir == "" {
		cfg.Benchmark.DataDir = "data"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	return nil
}
