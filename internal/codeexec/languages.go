package codeexec

import "errors"

// LanguageSpec describes one selectable language in the code panel.
type LanguageSpec struct {
	Name     string
	Label    string
	Template string
}

var languages = map[string]LanguageSpec{
	"python": {
		Name:     "python",
		Label:    "Python 3",
		Template: "def solve():\n    # Write your solution here\n    pass\n\n\nif __name__ == \"__main__\":\n    solve()\n",
	},
	"java": {
		Name:     "java",
		Label:    "Java 17",
		Template: "public class Main {\n    public static void main(String[] args) {\n        // Write your solution here\n    }\n}\n",
	},
	"cpp": {
		Name:     "cpp",
		Label:    "C++17",
		Template: "#include <bits/stdc++.h>\nusing namespace std;\n\nint main() {\n    // Write your solution here\n    return 0;\n}\n",
	},
	"javascript": {
		Name:     "javascript",
		Label:    "JavaScript (Node)",
		Template: "function solve() {\n  // Write your solution here\n}\n\nsolve();\n",
	},
}

func SupportedLanguagesList() []string {
	return []string{"python", "java", "cpp", "javascript"}
}

// Spec returns the language spec for a supported language name.
func Spec(name string) (LanguageSpec, error) {
	spec, ok := languages[name]
	if !ok {
		return LanguageSpec{}, errors.New("unsupported language: " + name)
	}
	return spec, nil
}
