// Command hashpw は ADMIN_PASSWORD_HASH に設定する bcrypt ハッシュを出力します。
//
//	go run ./cmd/hashpw -cost 12
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/yourusername/authgate/internal/password"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost factor")
	flag.Parse()

	hash, err := run(*cost, os.Stdin, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func run(cost int, in *os.File, prompt io.Writer) (string, error) {
	hasher, err := password.NewBcrypt(cost)
	if err != nil {
		return "", err
	}

	pw, err := readSecret(in, prompt)
	if err != nil {
		return "", err
	}
	return hashSecret(hasher, pw)
}

func readSecret(in *os.File, prompt io.Writer) ([]byte, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		// パイプ入力は1行目だけを使う
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, err
	}
	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

func hashSecret(hasher password.Hasher, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("password must not be empty")
	}
	return hasher.Hash(string(secret))
}
