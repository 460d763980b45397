package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra 已把错误打到 stderr，这里只负责退出码。
		os.Exit(1)
	}
}
