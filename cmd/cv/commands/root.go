package commands

import (
	"fmt"
	"os"

	"contextvault/pkg/app"
	"contextvault/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	CV *app.App
)

var rootCmd = &cobra.Command{
	Use:   "cv",
	Short: "ContextVault: version control for AI context",
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init 和 clone 是去创建环境的，跳过依赖检查
		switch cmd.Name() {
		case "init", "clone":
			return nil
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		// 统一初始化 App
		CV, err = app.New(cmd.Context(), wd)
		if err != nil {
			// 友好的错误提示
			return fmt.Errorf("failed to initialize contextvault: %w\n(Did you run 'cv init'?)", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.cv/config.yaml)")

	// remote.url 既可以写在 yaml 里，也可以用 --remote 覆盖
	rootCmd.PersistentFlags().String("remote", "", "Remote server base URL")
	if err := viper.BindPFlag("remote.url", rootCmd.PersistentFlags().Lookup("remote")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
