package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/labkey/pushdist/pkg/domain/interfaces"
	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

const (
	confirmPrompt   = "--> Hit [Enter] key to continue or CTRL+C to quit"
	sharedArtifacts = "client-api"
	javaClientGlob  = "*-ClientAPI-Java.zip"
)

type publishUseCase struct {
	env       *model.Environment
	teamcity  interfaces.TeamCityClient
	labkey    interfaces.LabKeyClient
	console   interfaces.Console
	storage   interfaces.ObjectStorage
	notifier  interfaces.Notifier
	linkOf    func(key string) string
	templates *templateStore
}

// Option configures the publish use case
type Option func(*publishUseCase)

// WithStorage sets the object storage files are uploaded to
func WithStorage(storage interfaces.ObjectStorage) Option {
	return func(uc *publishUseCase) {
		uc.storage = storage
	}
}

// WithNotifier sets a notifier called after each published customer
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *publishUseCase) {
		uc.notifier = notifier
	}
}

// WithLinkBuilder sets how download links are derived from object keys.
// Links are needed even when storage is disabled.
func WithLinkBuilder(fn func(key string) string) Option {
	return func(uc *publishUseCase) {
		uc.linkOf = fn
	}
}

// NewPublish creates a new instance of PublishUseCase
func NewPublish(env *model.Environment, teamcity interfaces.TeamCityClient, labkey interfaces.LabKeyClient, console interfaces.Console, opts ...Option) interfaces.PublishUseCase {
	uc := &publishUseCase{
		env:       env,
		teamcity:  teamcity,
		labkey:    labkey,
		console:   console,
		templates: &templateStore{dir: env.TemplateDir},
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.linkOf == nil {
		uc.linkOf = func(key string) string {
			if uc.storage != nil {
				return uc.storage.URL(key)
			}
			return key
		}
	}
	return uc
}

// publishRun is the state shared by every customer of one run.
type publishRun struct {
	opts      model.PublishOptions
	selection *model.BuildSelection
	manifest  *model.ArtifactManifest
	buildInfo *model.BuildInfo
	svnRev    string
	dists     model.Distributions
}

// Run publishes one build to the selected customers' download pages
func (uc *publishUseCase) Run(ctx context.Context, opts model.PublishOptions) error {
	logger := ctxlog.From(ctx).With("run_id", uuid.NewString(), "update_type", opts.UpdateType.String())
	ctx = ctxlog.With(ctx, logger)

	customers, err := uc.customers(ctx)
	if err != nil {
		return err
	}
	dists, err := uc.distributions(ctx)
	if err != nil {
		return err
	}
	customers, err = uc.selectCustomers(customers, opts.Customer)
	if err != nil {
		return err
	}

	selection, err := uc.lookupRelease(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("Resolved release",
		"build_type", selection.BuildType,
		"build_id", selection.BuildID,
		"version", selection.VersionNum,
	)

	if err := prepareCache(ctx, uc.env.CacheDir, opts.SkipDownload); err != nil {
		return err
	}

	manifest, err := uc.teamcity.GetManifest(ctx, selection.BuildType, selection.BuildID)
	if err != nil {
		return goerr.Wrap(err, "failed to download the artifact list from TeamCity")
	}
	buildInfo, err := uc.teamcity.GetBuildInfo(ctx, selection.BuildType)
	if err != nil {
		return goerr.Wrap(err, "failed to determine when the build was completed")
	}

	if !opts.SkipDownload {
		logger.Info("Download the client API artifacts from TeamCity")
		if err := uc.download(ctx, selection, manifest.ContainingName(sharedArtifacts)); err != nil {
			return err
		}
	}

	run := &publishRun{
		opts:      opts,
		selection: selection,
		manifest:  manifest,
		buildInfo: buildInfo,
		svnRev:    uc.revision(ctx, manifest),
		dists:     dists,
	}

	for _, customer := range customers {
		proceed, err := uc.publishCustomer(ctx, run, customer)
		if err != nil {
			return err
		}
		if !proceed {
			break
		}
	}

	logger.Info("Publishing finished")
	return nil
}

func (uc *publishUseCase) download(ctx context.Context, selection *model.BuildSelection, entries []model.ArtifactEntry) error {
	for _, e := range entries {
		if _, err := uc.teamcity.Download(ctx, selection.BuildType, selection.BuildID, e.Path(), uc.env.CacheDir); err != nil {
			return goerr.Wrap(err, "failed to download artifact", goerr.V("artifact", e.Path()))
		}
	}
	return nil
}

// revision finds the source revision from the cached Java client, falling
// back to the first LabKey artifact in the manifest.
func (uc *publishUseCase) revision(ctx context.Context, manifest *model.ArtifactManifest) string {
	logger := ctxlog.From(ctx)

	for _, dir := range []string{uc.env.CacheDir, filepath.Join(uc.env.CacheDir, "client-api", "java")} {
		files, _ := filepath.Glob(filepath.Join(dir, javaClientGlob))
		for _, f := range files {
			if rev, ok := model.RevisionFromName(filepath.Base(f)); ok {
				return rev
			}
		}
	}

	for _, e := range manifest.ContainingName("LabKey") {
		if rev, ok := model.RevisionFromName(e.Name); ok {
			return rev
		}
	}

	logger.Warn("Unable to determine the source revision of the build")
	return ""
}

// publishCustomer runs the whole publish sequence for one customer. It
// returns false when the remaining customers must not be processed.
func (uc *publishUseCase) publishCustomer(ctx context.Context, run *publishRun, customer model.Customer) (bool, error) {
	logger := ctxlog.From(ctx).With("customer", customer.Name, "build_target", customer.BuildTarget)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Download installer artifacts for the customer")
	if err := uc.download(ctx, run.selection, run.manifest.ForBuildTarget(customer.BuildTarget)); err != nil {
		return false, err
	}

	logger.Info("Start publishing for customer")

	custKey := customer.Key()
	prefix := model.NewKeyPrefix(custKey, run.selection.UpdateType, run.selection.VersionNum)
	in := &classifyInput{
		cacheDir:     uc.env.CacheDir,
		buildTarget:  customer.BuildTarget,
		customerKey:  custKey,
		professional: model.IsProfessional(customer.BuildTarget, run.dists.BaseOf(customer.BuildTarget)),
		prefix:       prefix,
		linkOf:       uc.linkOf,
	}

	pc, err := uc.publishContext(run, customer, in)
	if err != nil {
		return false, err
	}

	exists, err := uc.probe(ctx, customer, uc.env.ProjectURL(customer.ProjectName))
	if err != nil || !exists {
		return false, err
	}
	exists, err = uc.probe(ctx, customer, uc.env.ProjectURL(customer.ProjectName, customer.Folder))
	if err != nil || !exists {
		return false, err
	}

	artDir := filepath.Join(uc.env.CacheDir, customer.BuildTarget)
	files, err := regularFiles(artDir)
	if err != nil {
		return false, goerr.Wrap(err, "please check that the distribution exists on the TeamCity server",
			goerr.V("build_target", customer.BuildTarget))
	}

	uc.preview(run, customer, pc, files)
	if err := uc.console.Confirm(confirmPrompt); err != nil {
		return false, err
	}

	if run.opts.StorageEnabled() && uc.storage != nil {
		logger.Info("Begin pushing the customer's build artifacts", "prefix", prefix.String())
		shared, err := sharedUploads(in)
		if err != nil {
			return false, err
		}
		paths := make([]string, 0, len(files)+len(shared))
		for _, f := range files {
			paths = append(paths, filepath.Join(artDir, f))
		}
		paths = append(paths, shared...)

		for _, path := range paths {
			if err := uc.upload(ctx, prefix.Key(filepath.Base(path)), path); err != nil {
				return false, err
			}
		}
	}

	uc.updateWiki(ctx, run, customer, pc)
	uc.postMessage(ctx, run, customer, pc)

	if uc.notifier != nil && !run.opts.SafeMode {
		text := fmt.Sprintf("Published LabKey Server %s (%s) to %s", pc.Version, run.selection.UpdateType, customer.Name)
		if err := uc.notifier.Notify(ctx, text); err != nil {
			logger.Warn("Failed to send notification", "error", err)
		}
	}

	cleanBuildTarget(ctx, uc.env.CacheDir, customer.BuildTarget)
	return true, nil
}

func (uc *publishUseCase) publishContext(run *publishRun, customer model.Customer, in *classifyInput) (*model.PublishContext, error) {
	pc := &model.PublishContext{
		Version:          run.selection.VersionNum,
		SlashContextPath: uc.env.SlashContextPath(),
		Project:          customer.ProjectName,
		BuildInfoRoot:    uc.env.BuildInfoRoot,
		Folder:           customer.Folder,
		BuildType:        run.selection.BuildType,
		SvnRev:           run.svnRev,
		WhatsNew:         customer.WhatsNew,
		ReleaseNotes:     customer.ReleaseNotes,
		BuildDate:        run.buildInfo.DisplayDate(),
	}
	if run.opts.Message != "" {
		pc.BuildMessage = "NOTE: " + run.opts.Message
	}
	headings(pc, run.selection.UpdateType)

	binaries, related, err := classify(in)
	if err != nil {
		return nil, err
	}
	pc.Binaries = binaries
	pc.Related = related
	pc.WikiBinaryTableRows = renderTableRows(binaries)
	pc.WikiRelatedTableRows = renderTableRows(related)
	pc.MessageListItems = renderMessageList(binaries, related)

	return pc, nil
}

// probe checks that a customer page exists. A missing page is logged and
// reported as false.
func (uc *publishUseCase) probe(ctx context.Context, customer model.Customer, projectURL string) (bool, error) {
	target := projectURL + "/begin.view?"
	exists, err := uc.labkey.Exists(ctx, target)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check the customer's project", goerr.V("url", target))
	}
	if !exists {
		ctxlog.From(ctx).Error("The customer's project does not exist. Please create the customer's project and try again",
			"project", customer.ProjectName,
			"folder", customer.Folder,
			"url", target,
		)
	}
	return exists, nil
}

// regularFiles lists the names of the regular files directly in dir.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(types.ErrArtifactDirMissing, "there was a problem downloading the artifacts", goerr.V("dir", dir))
		}
		return nil, goerr.Wrap(err, "failed to list artifact directory", goerr.V("dir", dir))
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

func (uc *publishUseCase) preview(run *publishRun, customer model.Customer, pc *model.PublishContext, files []string) {
	uc.console.Printf("\n\n -- Review the information for this push: \n")
	uc.console.Printf("%-15s%s\n", "Customer Name:", customer.BuildTarget)
	uc.console.Printf("%-15s%s\n", "Release Name:", run.selection.UpdateType)
	uc.console.Printf("%-15s%s\n", "Message Title:", pc.MessageTitle)
	uc.console.Printf("%-15s%-12s%-8s%-10s%-8s\n", "TeamCity Info:", "Build Type: ", run.selection.BuildType, "Build ID:", run.selection.BuildID)
	uc.console.Printf("\nDistribution files to be pushed: \n")
	for _, f := range files {
		uc.console.Printf("    - %s\n", f)
	}
	uc.console.Printf("\n--> Review the information above. If it looks correct, then\n")
}

// upload stores one file unless the key is already present.
func (uc *publishUseCase) upload(ctx context.Context, key, path string) error {
	logger := ctxlog.From(ctx)

	if err := uc.storage.EnsureBucket(ctx); err != nil {
		return err
	}

	exists, err := uc.storage.Exists(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to check object", goerr.V("key", key))
	}
	if exists {
		logger.Info("File already exists in bucket, skipping the upload", "path", path, "key", key)
		return nil
	}

	logger.Info("Start the upload", "path", path, "key", key)
	if err := uc.storage.Upload(ctx, key, path); err != nil {
		return goerr.Wrap(err, "failed to upload file", goerr.V("path", path), goerr.V("key", key))
	}
	return nil
}

func (uc *publishUseCase) updateWiki(ctx context.Context, run *publishRun, customer model.Customer, pc *model.PublishContext) {
	updateType := run.selection.UpdateType
	logger := ctxlog.From(ctx).With("wiki", updateType.WikiName())

	kind := templateDevWiki
	if updateType.IsRelease() {
		kind = templateReleaseWiki
		if customer.Key() == model.GeneralCustomer {
			logger.Info("The release page of the general site is updated manually, skipping")
			return
		}
	}

	body, err := uc.templates.render(customer.Key(), kind, pc.Vars())
	if err != nil {
		logger.Error("There was a problem creating the wiki content from template. You may need to update the customer's wiki by hand", "error", err)
		return
	}

	if run.opts.SafeMode {
		logger.Info("Safe mode, wiki is not updated", "body_size", len(body))
		return
	}

	container := uc.env.CustomerContainer(customer.ProjectName, customer.Folder)
	status, err := uc.labkey.UpdateWiki(ctx, container, updateType.WikiName(), body)
	if err != nil {
		logger.Error("Update of the wiki has failed. You may need to update the customer's wiki by hand", "error", err)
		return
	}
	if (status >= 200 && status < 300) || status == 304 {
		logger.Info("Update of the wiki has been successfully completed", "status", status)
		return
	}
	logger.Error("Update of the wiki has failed. You may need to update the customer's wiki by hand", "status", status)
}

func (uc *publishUseCase) postMessage(ctx context.Context, run *publishRun, customer model.Customer, pc *model.PublishContext) {
	logger := ctxlog.From(ctx)

	body, err := uc.templates.render(customer.Key(), templateMessage, pc.Vars())
	if err != nil {
		logger.Error("There was a problem creating the message content from template. A message will not be posted", "error", err)
		return
	}

	if run.opts.SafeMode {
		logger.Info("Safe mode, message is not posted", "title", pc.MessageTitle, "body_size", len(body))
		return
	}

	container := uc.env.CustomerContainer(customer.ProjectName, customer.Folder)
	ok, err := uc.labkey.PostMessage(ctx, container, pc.MessageTitle, body)
	if err != nil || !ok {
		logger.Error("Post of message to customer's message board has failed", "error", err, "title", pc.MessageTitle)
		return
	}
	logger.Info("Post of message to customer's message board was completed", "title", pc.MessageTitle)
}
