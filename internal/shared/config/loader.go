package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load 加载 yml 配置到 out，并 watch 文件变更热更新。
// 约定：
// 1) 传入 cfgPath（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 configs/conf.yml。
func Load(cfgPath string, out any) {
	const defaultConfigRelPath = "configs/conf.yml"

	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	switch {
	case cfgPath == "":
		cfgPath = findConfigUpward(curDir, defaultConfigRelPath)
	case !filepath.IsAbs(cfgPath):
		cfgPath = filepath.Join(curDir, cfgPath)
	}

	if !fileExist(cfgPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", cfgPath))
	}

	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Println("配置文件变更:", e.Name)
		if err := v.Unmarshal(out); err != nil {
			log.Printf("viper unmarshal changed config failed, err=%v\n", err)
		}
	})
	v.WatchConfig()

	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := v.Unmarshal(out); err != nil {
		panic(err)
	}
}

func findConfigUpward(startDir, rel string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, rel)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched " + rel + " from: " + startDir)
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
