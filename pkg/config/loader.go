package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		// 用户指定了文件，直接使用
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：
		// 1. 当前目录
		viper.AddConfigPath(".")
		// 2. 当前目录下的 .cv
		viper.AddConfigPath(".cv")
		// 3. 用户主目录下的 .cv
		viper.AddConfigPath(filepath.Join(home, ".cv"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config") // 找 config.yaml
	}

	// 3. 读取环境变量 (CV_REMOTE_URL 等)
	viper.SetEnvPrefix("CV")
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错 (可能全靠环境变量/默认值)
		// 但配置文件格式错就是错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// 用户身份
	viper.SetDefault("user.name", "")

	// 远端服务
	viper.SetDefault("remote.url", "")
	viper.SetDefault("remote.token", "")

	// 存储后端: disk (默认) 或 s3
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.s3.region", "us-east-1")

	// 可选的 Redis 存在性缓存
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.ttl", "24h")

	// 历史投影库
	viper.SetDefault("history.driver", "sqlite")
	viper.SetDefault("history.dsn", "")
}
