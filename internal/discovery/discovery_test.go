package discovery_test

import (
	"context"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/spacesync/internal/discovery"
)

func initRepo(path, remote string) {
	GinkgoHelper()
	repo, err := git.PlainInit(path, false)
	Expect(err).NotTo(HaveOccurred())
	if remote != "" {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remote}})
		Expect(err).NotTo(HaveOccurred())
	}
}

func names(results []discovery.Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.RelPath)
	}
	return out
}

var _ = Describe("Discovery", func() {
	var (
		project string
		spaces  string
	)

	BeforeEach(func() {
		project = GinkgoT().TempDir()
		spaces = filepath.Join(project, "spaces")
		Expect(os.MkdirAll(spaces, 0o755)).To(Succeed())
	})

	scan := func(exclude ...string) []discovery.Result {
		GinkgoHelper()
		results, err := discovery.Scan(context.Background(), discovery.Options{
			Root:        spaces,
			ProjectRoot: project,
			Exclude:     exclude,
		})
		Expect(err).NotTo(HaveOccurred())
		return results
	}

	It("matches exclude patterns", func() {
		Expect(discovery.MatchesExclude("spaces/scratch", []string{"spaces/scratch*"})).To(BeTrue())
		Expect(discovery.MatchesExclude("spaces/deep/tmp", []string{"**/tmp"})).To(BeTrue())
		Expect(discovery.MatchesExclude("spaces/foo", []string{"**/node_modules/**"})).To(BeFalse())
		Expect(discovery.MatchesExclude("spaces/foo", []string{"[invalid"})).To(BeFalse())
	})

	It("finds direct repositories with their remotes", func() {
		initRepo(filepath.Join(spaces, "foo"), "git@host:org/foo.git")
		initRepo(filepath.Join(spaces, "bar"), "")
		Expect(os.MkdirAll(filepath.Join(spaces, "notes"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(spaces, "README.md"), []byte("hi"), 0o644)).To(Succeed())

		results := scan()
		Expect(names(results)).To(Equal([]string{"spaces/bar", "spaces/foo"}))
		Expect(results[0].Remote).To(BeEmpty())
		Expect(results[1].Remote).To(Equal("git@host:org/foo.git"))
		Expect(results[1].Name).To(Equal("foo"))
		Expect(results[1].Path).To(Equal(filepath.Join(spaces, "foo")))
	})

	It("descends one level into a group folder holding exactly one repository", func() {
		initRepo(filepath.Join(spaces, "group", "inner"), "https://host/inner")
		Expect(os.MkdirAll(filepath.Join(spaces, "group", "docs"), 0o755)).To(Succeed())

		results := scan()
		Expect(names(results)).To(Equal([]string{"spaces/group/inner"}))
		Expect(results[0].Name).To(Equal("inner"))
	})

	It("ignores group folders holding several repositories or deeper nesting", func() {
		initRepo(filepath.Join(spaces, "multi", "one"), "")
		initRepo(filepath.Join(spaces, "multi", "two"), "")
		initRepo(filepath.Join(spaces, "deep", "a", "b"), "")

		Expect(scan()).To(BeEmpty())
	})

	It("applies exclude patterns to root-relative paths", func() {
		initRepo(filepath.Join(spaces, "foo"), "")
		initRepo(filepath.Join(spaces, "scratch-1"), "")
		initRepo(filepath.Join(spaces, "group", "tmp"), "")

		Expect(names(scan("spaces/scratch*", "**/tmp"))).To(Equal([]string{"spaces/foo"}))
	})

	It("recognizes gitdir pointer files", func() {
		repo := filepath.Join(spaces, "linked")
		Expect(os.MkdirAll(repo, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: /elsewhere\n"), 0o644)).To(Succeed())

		results := scan()
		Expect(names(results)).To(Equal([]string{"spaces/linked"}))
		Expect(results[0].Remote).To(BeEmpty())
	})

	It("returns nothing when the root does not exist", func() {
		results, err := discovery.Scan(context.Background(), discovery.Options{Root: filepath.Join(project, "absent")})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("defaults the project root to the parent of the scanned directory", func() {
		initRepo(filepath.Join(spaces, "foo"), "")
		results, err := discovery.Scan(context.Background(), discovery.Options{Root: spaces})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(results)).To(Equal([]string{"spaces/foo"}))
	})
})
