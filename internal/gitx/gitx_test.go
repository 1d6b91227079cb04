package gitx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/spacesync/internal/gitx"
)

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("git version"))
	})

	It("reports stderr in a CommandError for a failing command", func() {
		_, err := runner.Run(context.Background(), GinkgoT().TempDir(), "rev-parse", "--abbrev-ref", "main@{upstream}")
		Expect(err).To(HaveOccurred())
		var cmdErr *gitx.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(cmdErr.Args).To(ContainElement("rev-parse"))
		Expect(cmdErr.Stderr).NotTo(BeEmpty())
	})

	It("turns an expired deadline into a timed out CommandError", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
		Expect(gitx.TimedOut(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("command timed out"))
	})

	It("returns at the deadline even when git leaves a child holding its output", func() {
		if runtime.GOOS == "windows" {
			Skip("needs a POSIX shell")
		}
		runner.GitBin = writeHangingGit(GinkgoT().TempDir())
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := runner.Run(ctx, "", "fetch", "--all", "--quiet")
		Expect(time.Since(start)).To(BeNumerically("<", 3*time.Second))
		Expect(gitx.TimedOut(err)).To(BeTrue())
	})

	It("reports a missing binary as a command failure", func() {
		runner.GitBin = filepath.Join(GinkgoT().TempDir(), "no-such-git")
		_, err := runner.Run(context.Background(), "", "version")
		var cmdErr *gitx.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
	})
})

var _ = Describe("command wrappers", func() {
	ctx := context.Background()

	It("reads the remote URL", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:remote get-url origin": {Output: "https://host/foo\n"},
		}}
		url, err := gitx.RemoteURL(ctx, mock, "/repo", "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("https://host/foo"))
	})

	It("reads the current branch", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:branch --show-current": {Output: "main"},
		}}
		branch, err := gitx.CurrentBranch(ctx, mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("main"))
	})

	It("counts dirty paths including untracked files", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:status --porcelain": {Output: " M a.go\n?? b.go\nA  c.go"},
		}}
		n, err := gitx.DirtyFileCount(ctx, mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("resolves the upstream of a branch", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --abbrev-ref dev@{upstream}": {Output: "origin/dev"},
		}}
		up, err := gitx.Upstream(ctx, mock, "/repo", "dev")
		Expect(err).NotTo(HaveOccurred())
		Expect(up).To(Equal("origin/dev"))
	})

	It("counts commits in a range", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-list --count origin/main..main": {Output: "3"},
			"/repo:rev-list --count main..origin/main": {Output: "garbage"},
		}}
		n, err := gitx.RevListCount(ctx, mock, "/repo", "origin/main", "main")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))

		_, err = gitx.RevListCount(ctx, mock, "/repo", "main", "origin/main")
		Expect(err).To(HaveOccurred())
	})

	It("lists local branches", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:branch --format=%(refname:short)": {Output: "main\n\n(HEAD detached at abc123)\nfeature/x\n"},
		}}
		branches, err := gitx.LocalBranches(ctx, mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(Equal([]string{"main", "feature/x"}))
	})

	It("issues the mutating commands with the expected arguments", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:fetch --all --quiet":  {},
			"/repo:checkout dev":         {},
			"/repo:pull --ff-only":       {},
			"/repo:push origin main":     {},
			"/repo:push -u origin topic": {},
		}}
		mock.Responses[":clone --branch main --single-branch https://host/foo /spaces/foo"] = MockResponse{}
		Expect(gitx.FetchAll(ctx, mock, "/repo")).To(Succeed())
		Expect(gitx.Checkout(ctx, mock, "/repo", "dev")).To(Succeed())
		Expect(gitx.PullFastForward(ctx, mock, "/repo")).To(Succeed())
		Expect(gitx.Push(ctx, mock, "/repo", "origin", "main")).To(Succeed())
		Expect(gitx.PushSetUpstream(ctx, mock, "/repo", "origin", "topic")).To(Succeed())
		Expect(gitx.Clone(ctx, mock, "https://host/foo", "/spaces/foo", "main")).To(Succeed())
		Expect(mock.Calls).To(HaveLen(6))
	})

	It("propagates command failures", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:pull --ff-only": {Err: errors.New("fatal: Not possible to fast-forward, aborting.")},
		}}
		Expect(gitx.PullFastForward(ctx, mock, "/repo")).NotTo(Succeed())
	})
})

var _ = Describe("Metadata", func() {
	It("detects working copies and reads the origin URL", func() {
		dir := GinkgoT().TempDir()
		repo, err := git.PlainInit(dir, false)
		Expect(err).NotTo(HaveOccurred())
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{"https://host/baz"}})
		Expect(err).NotTo(HaveOccurred())

		md := gitx.Metadata{}
		Expect(md.HasMetadata(dir)).To(BeTrue())
		url, err := md.RemoteURL(dir, "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("https://host/baz"))
	})

	It("returns an empty URL when the remote is not configured", func() {
		dir := GinkgoT().TempDir()
		_, err := git.PlainInit(dir, false)
		Expect(err).NotTo(HaveOccurred())

		url, err := gitx.Metadata{}.RemoteURL(dir, "origin")
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(BeEmpty())
	})

	It("reports plain directories as lacking metadata", func() {
		Expect(gitx.HasMetadata(GinkgoT().TempDir())).To(BeFalse())
	})
})

// writeHangingGit creates a stand-in git whose shell starts a long sleep that
// inherits stdout and stderr, as ssh or a credential helper would.
func writeHangingGit(dir string) string {
	path := filepath.Join(dir, "git")
	script := "#!/bin/sh\nsleep 30\necho done\n"
	Expect(os.WriteFile(path, []byte(script), 0o755)).To(Succeed())
	return path
}
