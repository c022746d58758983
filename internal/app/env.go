package app

import (
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

// LoadEnvFiles loads one or more dotenv files into the process environment.
// Later files override earlier ones and missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := godotenv.Overload(p); err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return fmt.Errorf("load %s: %w", p, err)
        }
    }
    return nil
}
