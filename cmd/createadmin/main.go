// Command createadmin 创建后台管理员，若用户名已存在则重置密码。
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fastqash/blog/internal/config"
	"github.com/fastqash/blog/internal/db"
	"golang.org/x/term"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	username := flag.String("username", "", "admin username")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	gdb, err := db.Open(cfg.Database(gormlogger.Default.LogMode(gormlogger.Warn)))
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	stdin := bufio.NewReader(os.Stdin)
	name := strings.TrimSpace(*username)
	if name == "" {
		fmt.Print("Username: ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			log.Fatalf("读取用户名失败: %v", err)
		}
		name = strings.TrimSpace(line)
	}

	password, err := readPassword(stdin)
	if err != nil {
		log.Fatalf("读取密码失败: %v", err)
	}

	created, err := db.UpsertUser(gdb, name, password)
	if err != nil {
		log.Fatalf("保存管理员失败: %v", err)
	}

	if created {
		fmt.Printf("管理员 %s 创建成功\n", name)
		return
	}
	fmt.Printf("管理员 %s 已存在，密码已更新\n", name)
}

// readPassword 在终端中不回显输入，管道输入时直接读取一行。
func readPassword(stdin *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return string(first), nil
}
