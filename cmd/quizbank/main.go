package main

import "os"

// @title           Quizbank API
// @version         1.0
// @description     Question bank loading, exam sessions, grading and wrong-question books.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
