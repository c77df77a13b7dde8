package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListen = ":51102"

	envListen   = "JPTAX_LISTEN"
	envGateway  = "JPTAX_GATEWAY"
	envMongoURI = "JPTAX_MONGO_URI"
)

var log = logrus.WithField("module", "config")

// Load 读取配置
// 功能：从文件或Base64编码数据读取YAML配置，再叠加环境变量
// 参数：path-配置文件路径，data-Base64编码的配置内容（path为空时使用）
// 返回：配置对象
// 算法说明：
// 1. 读取.env文件（若存在）到环境变量
// 2. 严格解析YAML，未知字段报错
// 3. 环境变量覆盖：JPTAX_LISTEN、JPTAX_GATEWAY、JPTAX_MONGO_URI
// 4. 填充默认值
// 说明：path与data均为空时只使用环境变量与默认值
func Load(path, data string) (Config, error) {
	var c Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	var file []byte
	var err error
	if path != "" {
		file, err = os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config file load err: %w", err)
		}
	} else if data != "" {
		file, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return c, fmt.Errorf("config data load err: %w", err)
		}
	}
	if len(file) > 0 {
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			return c, fmt.Errorf("config parse err: %w", err)
		}
	}

	applyEnv(&c)
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(envListen); v != "" {
		log.Debugf("%s overrides server.listen", envListen)
		c.Server.Listen = v
	}
	if v := os.Getenv(envGateway); v != "" {
		c.Server.Gateway = v
	}
	if v := os.Getenv(envMongoURI); v != "" {
		c.Input.URI = v
	}
}
