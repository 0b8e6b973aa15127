package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/stocks-snapshot/infra/cloudrun"
	"github.com/GregMSThompson/stocks-snapshot/infra/docker"
	"github.com/GregMSThompson/stocks-snapshot/infra/firestore"
	"github.com/GregMSThompson/stocks-snapshot/infra/identity"
	"github.com/GregMSThompson/stocks-snapshot/infra/kms"
	"github.com/GregMSThompson/stocks-snapshot/infra/provider"
	"github.com/GregMSThompson/stocks-snapshot/infra/secret"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// identity platform backs the firebase auth on /widgets
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// widget registrations and the click log
		fs, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// key that encrypts per-widget api keys at rest
		kmsSvc, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		keyName, err := kms.CreateKey(ctx, prov, "stocks-snapshot", "widget-api-keys")
		if err != nil {
			return err
		}

		smSvc, err := secret.SetupSecretManager(ctx, prov)
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.SetupCloudRun(ctx, prov, cloudrun.Settings{KMSKeyName: keyName},
			ident, fs, kmsSvc, smSvc, repo)
		if err != nil {
			return err
		}

		ctx.Export("serviceAccount", apiSA.Email)
		ctx.Export("kmsKeyName", keyName)
		return nil
	})
}
