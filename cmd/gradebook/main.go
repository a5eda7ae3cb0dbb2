// Package main - точка входа консольного журнала оценок.
//
// Корневая команда запускает интерактивное меню; подкоманды rank, search и
// transcript выполняют один запрос над данными из seed-файла и завершаются.
//
// Архитектура следует слоям DDD:
// - Domain: курсы, студенты, рейтинг без внешних зависимостей
// - Application: команды, запросы и фасад GradeBook
// - Infrastructure: реестры в памяти, шина событий, зеркало в Redis, seed
// - Interface: интерактивная оболочка
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		}
		os.Exit(1)
	}
}
