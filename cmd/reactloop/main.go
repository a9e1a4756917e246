// Command reactloop answers questions with a ReAct agent: the model reasons,
// calls local tools through "Action:" directives and finally answers.
package main

func main() {
	Execute()
}
