package main

import (
	"fmt"
	"os"

	"github.com/crucial707/blog-api/cmd/cli/admin"
	"github.com/crucial707/blog-api/cmd/cli/auth"
	"github.com/crucial707/blog-api/cmd/cli/categories"
	"github.com/crucial707/blog-api/cmd/cli/comments"
	"github.com/crucial707/blog-api/cmd/cli/posts"
	"github.com/crucial707/blog-api/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	posts.InitPosts(rootCmd)
	comments.InitComments(rootCmd)
	categories.InitCategories(rootCmd)
	admin.InitAdmin(rootCmd)

	// Execute the root Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
