package remote

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const zenodoDefaultBaseURL = "https://zenodo.org/api"

// ZenodoAdapter implements Adapter against Zenodo's deposition API.
// Depositions are found by title search; uploads go through the
// deposition's file bucket, Zenodo's modern (non-legacy) upload path.
type ZenodoAdapter struct {
	*httpClient
}

// NewZenodo returns a Zenodo adapter. An empty baseURL uses the
// production API host.
func NewZenodo(baseURL string) *ZenodoAdapter {
	if baseURL == "" {
		baseURL = zenodoDefaultBaseURL
	}
	return &ZenodoAdapter{httpClient: newHTTPClient(baseURL)}
}

func (a *ZenodoAdapter) Authenticate(token string) error {
	return a.authenticate(token) // Zenodo takes the token as ?access_token=
}

// EnsureProject searches depositions whose title matches name; if none
// is found, creates a new unpublished draft deposition (spec.md §4.C
// "Zenodo ... if none, create as unpublished draft").
func (a *ZenodoAdapter) EnsureProject(name string) (string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("title:%q", name))
	depositions, err := a.getJSONArray("/deposit/depositions?" + q.Encode())
	if err != nil {
		return "", err
	}
	for _, d := range depositions {
		meta, err := d.GetObject("metadata")
		if err != nil {
			continue
		}
		title, _ := meta.GetString("title")
		if title == name {
			id, err := d.GetInt64("id")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d", id), nil
		}
	}

	obj, _, err := a.postJSON("/deposit/depositions", map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":        name,
			"upload_type":  "dataset",
			"access_right": "restricted",
		},
	})
	if err != nil {
		return "", err
	}
	id, err := obj.GetInt64("id")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", id), nil
}

// SetMetadata attaches title, description, and a single creator to an
// already-created deposition. This is the hook for spec.md §4.C's
// "Metadata (title, description, creators from UserConfig) is attached
// on ensure_project/update" — it is not part of the shared Adapter
// contract since FigShare and StaticURL have no equivalent, so callers
// type-assert for it (see reconcile.Metadata).
func (a *ZenodoAdapter) SetMetadata(depositionID, title, description, creator string) error {
	creators := []map[string]interface{}{}
	if creator != "" {
		creators = append(creators, map[string]interface{}{"name": creator})
	}
	_, _, err := a.putJSON("/deposit/depositions/"+depositionID, map[string]interface{}{
		"metadata": map[string]interface{}{
			"title":       title,
			"description": description,
			"upload_type": "dataset",
			"creators":    creators,
		},
	})
	return err
}

// ListFiles lists the files already attached to depositionID.
func (a *ZenodoAdapter) ListFiles(depositionID string) ([]RemoteFile, error) {
	objs, err := a.getJSONArray("/deposit/depositions/" + depositionID + "/files")
	if err != nil {
		return nil, err
	}
	files := make([]RemoteFile, 0, len(objs))
	for _, obj := range objs {
		name, _ := obj.GetString("filename")
		size, _ := obj.GetInt64("filesize")
		checksum, checksumErr := obj.GetString("checksum")
		md5 := strings.TrimPrefix(checksum, "md5:")
		links, _ := obj.GetObject("links")
		downloadURL, _ := links.GetString("download")
		files = append(files, RemoteFile{
			Name:        name,
			MD5:         md5,
			HasMD5:      checksumErr == nil && md5 != "",
			Size:        size,
			DownloadURL: downloadURL,
		})
	}
	return files, nil
}

// Upload streams localPath into depositionID's file bucket.
func (a *ZenodoAdapter) Upload(depositionID, localPath string, overwrite bool) (RemoteFile, error) {
	name := filepath.Base(localPath)
	if !overwrite {
		existing, err := a.ListFiles(depositionID)
		if err != nil {
			return RemoteFile{}, err
		}
		for _, f := range existing {
			if f.Name == name {
				return RemoteFile{}, ErrAlreadyExists
			}
		}
	}

	dep, err := a.getJSON("/deposit/depositions/" + depositionID)
	if err != nil {
		return RemoteFile{}, err
	}
	links, err := dep.GetObject("links")
	if err != nil {
		return RemoteFile{}, err
	}
	bucket, err := links.GetString("bucket")
	if err != nil {
		return RemoteFile{}, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return RemoteFile{}, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return RemoteFile{}, err
	}

	if err := a.putBytes(bucket+"/"+name, f); err != nil {
		return RemoteFile{}, err
	}
	return RemoteFile{Name: name, Size: fi.Size()}, nil
}

// Publish moves depositionID from draft to published and waits for the
// state change to settle, the way bclientapi.WaitForCommitFinish polls
// bendo's transaction status after a commit instead of trusting the
// initial response. Zenodo's own publish call is normally synchronous,
// but the API documents it as eventually-consistent under load, so
// callers that need certainty before handing out the record's DOI
// should call this instead of treating the POST's 202 as done. Not
// part of the shared Adapter contract; callers type-assert for it.
func (a *ZenodoAdapter) Publish(depositionID string) error {
	if _, _, err := a.postJSON("/deposit/depositions/"+depositionID+"/actions/publish", nil); err != nil {
		return err
	}
	return a.waitForPublish(depositionID)
}

// waitForPublish polls depositionID's state with a growing delay until
// it reports "done" or "error", capped at a handful of attempts since
// Zenodo settles in seconds, not bendo's ~12-hour transaction budget.
func (a *ZenodoAdapter) waitForPublish(depositionID string) error {
	delay := 2 * time.Second
	for i := 0; i < 10; i++ {
		time.Sleep(delay)

		obj, err := a.getJSON("/deposit/depositions/" + depositionID)
		if err != nil {
			return err
		}
		state, _ := obj.GetString("state")
		switch state {
		case "done":
			return nil
		case "error", "erroring":
			return ErrPublishFailed
		}
		delay += 2 * time.Second
	}
	return ErrPublishTimeout
}

func (a *ZenodoAdapter) DownloadURL(rf RemoteFile) (string, error) {
	if rf.DownloadURL == "" {
		return "", ErrNotFound
	}
	return rf.DownloadURL, nil
}

func (a *ZenodoAdapter) SupportsMD5() bool { return true }
