package main

import "github.com/mlevkov/go-todo-backend/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustOpenStorage()
	defer app.CloseStorage()

	app.MustListenAndServeHTTP()
}
